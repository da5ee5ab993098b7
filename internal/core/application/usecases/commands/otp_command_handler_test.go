package commands_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/actor"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/pkg/clock"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMaskPhone(t *testing.T) {
	tests := map[string]string{
		"+56911112222": "+569*****222",
		"+5691111222":  "+569****222",
		"0911112222":   "********22",
		"91112222":     "******22",
		"1112222":      "*******",
		"12345":        "*****",
		"":             "",
	}
	for phone, want := range tests {
		t.Run(phone, func(t *testing.T) {
			masked := commands.MaskPhone(phone)
			assert.Equal(t, want, masked)
			if phone != "" {
				assert.GreaterOrEqual(t, strings.Count(masked, "*"), 3)
			}
		})
	}
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "r***@example.com", commands.MaskEmail("rosa@example.com"))
	assert.Equal(t, "j***@x.io", commands.MaskEmail("jo@x.io"))
	assert.Equal(t, "*******", commands.MaskEmail("invalid"))
}

func TestOTPCommandHandler_Generate_FallsThroughToEmail(t *testing.T) {
	ctx := t.Context()
	rider := testkit.Actor(t, actor.RoleCourier)
	o := testkit.Order(t, kernel.NewUUID(), order.TypeStandard)
	testkit.Advance(t, o, rider.ID(), order.InProgress)
	now := testkit.Now.Add(time.Hour)

	authz := new(MockAuthorizer)
	authz.On("CanPerform", rider, actor.OpOTPGenerate, mock.Anything).Return(true)
	repo := new(MockOrderRepository)
	uow := new(MockUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once(),
		repo.On("Update", ctx, o).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)

	sms := new(MockOTPChannel)
	sms.On("Send", ctx, "+56911112222", mock.Anything).Return(errors.New("carrier down")).Once()
	email := new(MockOTPChannel)
	email.On("Send", ctx, "rosa@example.com", mock.MatchedBy(func(msg string) bool {
		return strings.Contains(msg, "482913")
	})).Return(nil).Once()

	h := commands.NewOTPCommandHandler(factory, authz, fixedCodes{code: "482913"},
		commands.OTPChannels{SMS: sms, Email: email}, order.DefaultOTPPolicy(), nil, clock.NewManual(now), nil)
	cmd, err := commands.NewGenerateOTPCommand(rider, o.ID())
	require.NoError(t, err)

	res, err := h.Generate(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, "482913", res.Code)
	assert.Equal(t, order.ChannelEmail, res.Channel)
	assert.Equal(t, "r***@example.com", res.Destination)
	assert.True(t, res.ExpiresAt.Equal(now.Add(15*time.Minute)))
	assert.Equal(t, "482913", o.OTP().Code())
	assert.Equal(t, order.ChannelEmail, o.OTP().Channel())
	sms.AssertExpectations(t)
	email.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestOTPCommandHandler_Generate_NoChannelAccepts(t *testing.T) {
	ctx := t.Context()
	rider := testkit.Actor(t, actor.RoleCourier)
	o := testkit.Order(t, kernel.NewUUID(), order.TypeStandard)
	testkit.Advance(t, o, rider.ID(), order.InProgress)

	authz := new(MockAuthorizer)
	authz.On("CanPerform", rider, actor.OpOTPGenerate, mock.Anything).Return(true)
	repo := new(MockOrderRepository)
	repo.On("GetForUpdate", ctx, o.ID()).Return(o, nil)
	uow := new(MockUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("OrderRepository").Return(repo)
	uow.On("Rollback", ctx).Return(nil)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)
	sms := new(MockOTPChannel)
	sms.On("Send", ctx, mock.Anything, mock.Anything).Return(errors.New("carrier down"))

	h := commands.NewOTPCommandHandler(factory, authz, fixedCodes{code: "482913"},
		commands.OTPChannels{SMS: sms}, order.DefaultOTPPolicy(), nil, clock.NewManual(testkit.Now.Add(time.Hour)), nil)
	cmd, err := commands.NewGenerateOTPCommand(rider, o.ID())
	require.NoError(t, err)

	_, err = h.Generate(ctx, cmd)

	require.ErrorIs(t, err, commands.ErrOTPUndeliverable)
	var conflict *errs.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, true, conflict.Details["fallback_required"])
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	assert.Empty(t, o.OTP().Code())
}

func TestOTPCommandHandler_Generate_SendsUnderLockAndReportsFailedCommit(t *testing.T) {
	ctx := t.Context()
	rider := testkit.Actor(t, actor.RoleCourier)
	o := testkit.Order(t, kernel.NewUUID(), order.TypeStandard)
	testkit.Advance(t, o, rider.ID(), order.InProgress)

	authz := new(MockAuthorizer)
	authz.On("CanPerform", rider, actor.OpOTPGenerate, mock.Anything).Return(true)
	repo := new(MockOrderRepository)
	uow := new(MockUoW)
	sms := new(MockOTPChannel)
	commitErr := errors.New("connection reset")
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(repo).Once(),
		repo.On("GetForUpdate", ctx, o.ID()).Return(o, nil).Once(),
		sms.On("Send", ctx, "+56911112222", mock.Anything).Return(nil).Once(),
		repo.On("Update", ctx, o).Return(nil).Once(),
		uow.On("Commit", ctx).Return(commitErr).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow)

	h := commands.NewOTPCommandHandler(factory, authz, fixedCodes{code: "482913"},
		commands.OTPChannels{SMS: sms}, order.DefaultOTPPolicy(), nil, clock.NewManual(testkit.Now.Add(time.Hour)), nil)
	cmd, err := commands.NewGenerateOTPCommand(rider, o.ID())
	require.NoError(t, err)

	_, err = h.Generate(ctx, cmd)

	require.ErrorIs(t, err, commitErr)
	sms.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestNewRecordFallbackCommand_RejectsCodeChannels(t *testing.T) {
	_, err := commands.NewRecordFallbackCommand(testkit.Actor(t, actor.RoleCourier), kernel.NewUUID(), order.ChannelSMS, "ref")

	require.True(t, errs.IsValidation(err))
}
