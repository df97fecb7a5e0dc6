package planka

import (
	"fmt"

	"github.com/mintopia/planka-mcp-sub001/adapters/gocommand"
	plankacommand "github.com/mintopia/planka-mcp-sub001/command"
	plankaquery "github.com/mintopia/planka-mcp-sub001/query"
)

// CommandQueryService is the runtime slice the message-driven surface
// needs: mutations on the subscription registry plus its read side.
type CommandQueryService interface {
	plankacommand.MutatingService
	plankaquery.SubscriptionReader
}

type Commands struct {
	Subscribe     *plankacommand.SubscribeCommand
	Unsubscribe   *plankacommand.UnsubscribeCommand
	RemoveSession *plankacommand.RemoveSessionCommand
}

type Queries struct {
	SessionResources *plankaquery.SessionResourcesQuery
	IsSubscribed     *plankaquery.IsSubscribedQuery
	Subscribers      *plankaquery.SubscribersQuery
}

// Facade bundles the command and query handlers over one service so hosts
// can register the whole surface with a dispatcher in one call.
type Facade struct {
	service  CommandQueryService
	commands Commands
	queries  Queries
}

func NewFacade(service CommandQueryService) (*Facade, error) {
	if service == nil {
		return nil, fmt.Errorf("planka: command/query service is required")
	}
	facade := &Facade{service: service}
	facade.commands = Commands{
		Subscribe:     plankacommand.NewSubscribeCommand(service),
		Unsubscribe:   plankacommand.NewUnsubscribeCommand(service),
		RemoveSession: plankacommand.NewRemoveSessionCommand(service),
	}
	facade.queries = Queries{
		SessionResources: plankaquery.NewSessionResourcesQuery(service),
		IsSubscribed:     plankaquery.NewIsSubscribedQuery(service),
		Subscribers:      plankaquery.NewSubscribersQuery(service),
	}
	return facade, nil
}

func (f *Facade) Commands() Commands {
	if f == nil {
		return Commands{}
	}
	return f.commands
}

func (f *Facade) Queries() Queries {
	if f == nil {
		return Queries{}
	}
	return f.queries
}

func (f *Facade) Service() CommandQueryService {
	if f == nil {
		return nil
	}
	return f.service
}

// RegisterAll registers and subscribes every command and query with the
// shared dispatcher through the registry adapter.
func (f *Facade) RegisterAll(adapter *gocommand.RegistryAdapter) error {
	if f == nil {
		return fmt.Errorf("planka: facade is required")
	}
	if adapter == nil {
		return fmt.Errorf("planka: registry adapter is required")
	}
	if _, err := gocommand.RegisterAndSubscribe(adapter, f.commands.Subscribe); err != nil {
		return err
	}
	if _, err := gocommand.RegisterAndSubscribe(adapter, f.commands.Unsubscribe); err != nil {
		return err
	}
	if _, err := gocommand.RegisterAndSubscribe(adapter, f.commands.RemoveSession); err != nil {
		return err
	}
	if _, err := gocommand.RegisterAndSubscribeQuery(adapter, f.queries.SessionResources); err != nil {
		return err
	}
	if _, err := gocommand.RegisterAndSubscribeQuery(adapter, f.queries.IsSubscribed); err != nil {
		return err
	}
	if _, err := gocommand.RegisterAndSubscribeQuery(adapter, f.queries.Subscribers); err != nil {
		return err
	}
	return adapter.Initialize()
}
