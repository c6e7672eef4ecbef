// Package authz grants the admin role to an exact-identity allow-list.
// Role membership is configured, never inferred from the shape of a name:
// "MARIA" being an admin says nothing about "MARIA SILVA".
package authz

import (
	_ "embed"
	"errors"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"github.com/evalworks/vendoreval/internal/config"
	"github.com/evalworks/vendoreval/internal/userctx"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	RoleAdmin = "role:admin"

	ObjectLedger = "ledger"

	ActionView   = "ledger.view"
	ActionDelete = "ledger.delete"
	ActionPurge  = "ledger.purge"
)

var ErrForbidden = errors.New("forbidden")

type Service interface {
	// IsAdmin reports whether the normalized user name carries the admin
	// role. Matching is exact.
	IsAdmin(user string) (bool, error)

	// Authorize checks one (object, action) capability for a user.
	Authorize(user, object, action string) error
}

type Params struct {
	fx.In

	Cfg      config.Config
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB, cfg config.Config) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer, cfg); err != nil {
		return nil, err
	}
	if err := enforcer.BuildRoleLinks(); err != nil {
		return nil, err
	}
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		log:      p.Log.Named("authz.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) IsAdmin(user string) (bool, error) {
	subject := userctx.Normalize(user)
	if subject == "" {
		return false, nil
	}
	return s.enforcer.HasGroupingPolicy(subject, RoleAdmin)
}

func (s *ServiceImpl) Authorize(user, object, action string) error {
	subject := userctx.Normalize(user)
	if subject == "" {
		return ErrForbidden
	}
	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrForbidden
	}
	return nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer, cfg config.Config) error {
	policies := [][]string{
		{RoleAdmin, ObjectLedger, ActionView},
		{RoleAdmin, ObjectLedger, ActionDelete},
		{RoleAdmin, ObjectLedger, ActionPurge},
	}
	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy); err != nil {
			return err
		}
	}

	for _, name := range cfg.AdminUsers {
		subject := userctx.Normalize(name)
		if subject == "" {
			continue
		}
		if _, err := enforcer.AddGroupingPolicy(subject, RoleAdmin); err != nil {
			return err
		}
	}
	return nil
}
