// Package authz answers capability questions with a casbin enforcer whose
// rules live in the casbin_rule table. A request is allowed when any
// relationship the actor holds is granted the operation.
package authz

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/actor"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const casbinTableName = "casbin_rule"

const relationshipModel = `
[request_definition]
r = rel, op

[policy_definition]
p = rel, op

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.rel == p.rel && r.op == p.op
`

type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
	log      *zap.SugaredLogger
}

// New loads the rule table, seeding it with DefaultRules when it is empty.
func New(db *gorm.DB, log *zap.SugaredLogger) (*Enforcer, error) {
	if db == nil {
		return nil, errors.New("authz db is nil")
	}
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	adapter, err := gormadapter.NewAdapterByDBUseTableName(db, "", casbinTableName)
	if err != nil {
		return nil, fmt.Errorf("create authz adapter: %w", err)
	}
	m, err := model.NewModelFromString(relationshipModel)
	if err != nil {
		return nil, fmt.Errorf("load authz model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("init authz enforcer: %w", err)
	}
	enforcer.EnableAutoSave(true)
	if err = enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("load authz policy: %w", err)
	}

	e := &Enforcer{enforcer: enforcer, log: log}
	if err = e.seed(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *Enforcer) seed() error {
	existing, err := e.enforcer.GetPolicy()
	if err != nil {
		return fmt.Errorf("read authz policy: %w", err)
	}
	if len(existing) > 0 {
		return nil
	}

	rules := DefaultRules()
	rows := make([][]string, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, []string{string(r.Relationship), string(r.Operation)})
	}
	if _, err = e.enforcer.AddPolicies(rows); err != nil {
		return fmt.Errorf("seed authz policy: %w", err)
	}
	e.log.Infow("authz_policy_seeded", "rules", len(rows))
	return nil
}

// CanPerform reports whether any of rels is granted op. Enforcement errors
// deny.
func (e *Enforcer) CanPerform(a actor.Actor, op actor.Operation, rels []actor.Relationship) bool {
	for _, rel := range rels {
		ok, err := e.enforcer.Enforce(string(rel), string(op))
		if err != nil {
			e.log.Errorw("authz_enforce_failed", "actor_id", a.ID().String(), "operation", op, "error", err)
			return false
		}
		if ok {
			return true
		}
	}
	return false
}

// Grant adds a rule at runtime.
func (e *Enforcer) Grant(rule Rule) error {
	_, err := e.enforcer.AddPolicy(string(rule.Relationship), string(rule.Operation))
	return err
}

// Revoke removes a rule at runtime.
func (e *Enforcer) Revoke(rule Rule) error {
	_, err := e.enforcer.RemovePolicy(string(rule.Relationship), string(rule.Operation))
	return err
}

// Reload re-reads the rule table.
func (e *Enforcer) Reload() error {
	return e.enforcer.LoadPolicy()
}
