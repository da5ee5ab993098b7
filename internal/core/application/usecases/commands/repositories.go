// Package commands contains the write use cases of the dispatch core. Every
// handler validates its command, opens a unit of work, checks the caller's
// capability against the order, mutates aggregates, commits, and only then
// performs side effects such as notifications.
package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// Unit of Work interfaces narrowed to what each handler touches.
type (
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	BidRepoFactory interface {
		BidRepository() ports.BidRepository
	}

	CounterOfferRepoFactory interface {
		CounterOfferRepository() ports.CounterOfferRepository
	}

	ParticipantRepoFactory interface {
		ParticipantRepository() ports.ParticipantRepository
	}

	CourierRepoFactory interface {
		CourierRepository() ports.CourierRepository
	}

	// OrderUoW is used by handlers that only change the order row.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// CourierUoW is used by courier profile handlers.
	CourierUoW interface {
		TxManager
		CourierRepoFactory
	}

	CourierUoWFactory interface {
		Create() CourierUoW
	}

	// UoW spans the order and every child collection.
	//
	//	uow := factory.Create()
	//	if err := uow.Begin(ctx); err != nil {
	//	    return err
	//	}
	//	defer func() { _ = uow.Rollback(ctx) }()
	//	o, err := uow.OrderRepository().GetForUpdate(ctx, id)
	//	...
	//	return uow.Commit(ctx)
	UoW interface {
		TxManager
		OrderRepoFactory
		BidRepoFactory
		CounterOfferRepoFactory
		ParticipantRepoFactory
		CourierRepoFactory
	}

	UoWFactory interface {
		Create() UoW
	}
)
