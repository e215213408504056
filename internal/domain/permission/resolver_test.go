package permission

import (
	"context"
	"sort"
	"testing"
	"time"

	"stockcontrol/internal/core/apperror"
	"stockcontrol/internal/domain/user"
)

type fakeUserRepo struct {
	users map[int64]*user.User
}

func (f *fakeUserRepo) Create(context.Context, *user.User) error { return nil }
func (f *fakeUserRepo) Update(context.Context, *user.User) error { return nil }

func (f *fakeUserRepo) GetByID(_ context.Context, userID int64) (*user.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, apperror.NewNotFound("user", userID)
	}
	return u, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*user.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("user", email)
}

func (f *fakeUserRepo) ListActiveByCompany(context.Context, int64, []user.Role) ([]user.User, error) {
	return nil, nil
}

func (f *fakeUserRepo) ExistsEmail(context.Context, string) (bool, error) { return false, nil }

type fakePermissionRepo struct {
	catalog map[string]*Permission
	grants  map[int64]map[int64]*Grant // userID -> permissionID -> grant
}

func newFakePermissionRepo(keys ...string) *fakePermissionRepo {
	f := &fakePermissionRepo{
		catalog: make(map[string]*Permission),
		grants:  make(map[int64]map[int64]*Grant),
	}
	for i, key := range keys {
		f.catalog[key] = &Permission{ID: int64(i + 1), Key: key, CreatedAt: time.Now()}
	}
	return f
}

func (f *fakePermissionRepo) GetByKey(_ context.Context, key string) (*Permission, error) {
	p, ok := f.catalog[key]
	if !ok {
		return nil, apperror.NewNotFound("permission", key)
	}
	return p, nil
}

func (f *fakePermissionRepo) List(_ context.Context) ([]Permission, error) {
	out := make([]Permission, 0, len(f.catalog))
	for _, p := range f.catalog {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePermissionRepo) Upsert(_ context.Context, p *Permission) error {
	f.catalog[p.Key] = p
	return nil
}

func (f *fakePermissionRepo) GetGrant(_ context.Context, userID, permissionID int64) (*Grant, error) {
	if byPerm, ok := f.grants[userID]; ok {
		return byPerm[permissionID], nil
	}
	return nil, nil
}

func (f *fakePermissionRepo) ListGrants(_ context.Context, userID int64) ([]Grant, error) {
	var out []Grant
	for _, g := range f.grants[userID] {
		out = append(out, *g)
	}
	return out, nil
}

func (f *fakePermissionRepo) SaveGrant(_ context.Context, g *Grant) error {
	if f.grants[g.UserID] == nil {
		f.grants[g.UserID] = make(map[int64]*Grant)
	}
	f.grants[g.UserID][g.PermissionID] = g
	return nil
}

func (f *fakePermissionRepo) grant(userID int64, key string, granted bool) {
	p := f.catalog[key]
	if f.grants[userID] == nil {
		f.grants[userID] = make(map[int64]*Grant)
	}
	f.grants[userID][p.ID] = &Grant{UserID: userID, PermissionID: p.ID, Granted: granted}
}

func testUser(id int64, role user.Role, custom bool) *user.User {
	return &user.User{
		ID:                id,
		CompanyID:         1,
		Role:              role,
		CustomPermissions: custom,
		IsActive:          true,
	}
}

func TestResolver_HasPermission(t *testing.T) {
	repo := newFakePermissionRepo(AllKeys...)
	users := &fakeUserRepo{users: map[int64]*user.User{
		1: testUser(1, user.RoleProprietario, false),
		2: testUser(2, user.RoleAdmin, false),
		3: testUser(3, user.RoleFuncionario, false),
		4: testUser(4, user.RoleFuncionario, true),
		5: testUser(5, user.RoleAdmin, true),
	}}

	// User 4: staff with custom permissions, explicitly granted sales.
	repo.grant(4, KeyVendasRealizar, true)
	// User 5: admin with custom permissions, explicitly revoked user creation.
	repo.grant(5, KeyUsuariosCriar, false)

	tests := []struct {
		name   string
		userID int64
		key    string
		want   bool
	}{
		{"owner holds everything", 1, KeyUsuariosCriar, true},
		{"admin default grants stock management", 2, KeyEstoqueGerenciar, true},
		{"staff default allows viewing products", 3, KeyProdutosVisualizar, true},
		{"staff default denies sales", 3, KeyVendasRealizar, false},
		{"custom grant beats staff default", 4, KeyVendasRealizar, true},
		{"custom user loses ungranted defaults", 4, KeyProdutosVisualizar, false},
		{"explicit false revokes admin default", 5, KeyUsuariosCriar, false},
		{"custom admin without grant row", 5, KeyProdutosCriar, false},
		{"unknown user resolves false", 99, KeyProdutosVisualizar, false},
		{"unknown key resolves false", 4, "relatorios_exportar", false},
	}

	resolver := NewResolver(users, repo)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolver.HasPermission(context.Background(), tt.userID, tt.key)
			if err != nil {
				t.Fatalf("HasPermission failed: %v", err)
			}
			if got != tt.want {
				t.Errorf("HasPermission(%d, %s)\nwant: %v\ngot:  %v", tt.userID, tt.key, tt.want, got)
			}
		})
	}
}

func TestResolver_OwnerIgnoresRevokedGrants(t *testing.T) {
	repo := newFakePermissionRepo(AllKeys...)
	users := &fakeUserRepo{users: map[int64]*user.User{
		1: testUser(1, user.RoleProprietario, true),
	}}
	// Even an explicit false grant cannot revoke an owner's access.
	repo.grant(1, KeyEstoqueGerenciar, false)

	resolver := NewResolver(users, repo)
	got, err := resolver.HasPermission(context.Background(), 1, KeyEstoqueGerenciar)
	if err != nil {
		t.Fatalf("HasPermission failed: %v", err)
	}
	if !got {
		t.Error("owner must hold the permission despite a revoked grant row")
	}
}

func TestResolver_Require(t *testing.T) {
	repo := newFakePermissionRepo(AllKeys...)
	users := &fakeUserRepo{users: map[int64]*user.User{
		3: testUser(3, user.RoleFuncionario, false),
	}}
	resolver := NewResolver(users, repo)

	if err := resolver.Require(context.Background(), 3, KeyProdutosVisualizar); err != nil {
		t.Errorf("expected staff to pass a default permission check: %v", err)
	}

	err := resolver.Require(context.Background(), 3, KeyVendasRealizar)
	if !apperror.IsForbidden(err) {
		t.Fatalf("expected forbidden, got %v", err)
	}
	appErr, _ := apperror.AsAppError(err)
	if appErr.Details["required_permission"] != KeyVendasRealizar {
		t.Errorf("missing key must be named in details, got %v", appErr.Details)
	}
}

func TestResolver_EffectivePermissions(t *testing.T) {
	repo := newFakePermissionRepo(AllKeys...)
	users := &fakeUserRepo{users: map[int64]*user.User{
		1: testUser(1, user.RoleProprietario, false),
		3: testUser(3, user.RoleFuncionario, false),
		4: testUser(4, user.RoleFuncionario, true),
	}}
	repo.grant(4, KeyVendasRealizar, true)
	repo.grant(4, KeyEstoqueGerenciar, false)

	resolver := NewResolver(users, repo)
	ctx := context.Background()

	owner, err := resolver.EffectivePermissions(ctx, 1)
	if err != nil {
		t.Fatalf("EffectivePermissions failed: %v", err)
	}
	if len(owner) != len(AllKeys) {
		t.Errorf("owner key count\nwant: %d\ngot:  %d", len(AllKeys), len(owner))
	}

	staff, err := resolver.EffectivePermissions(ctx, 3)
	if err != nil {
		t.Fatalf("EffectivePermissions failed: %v", err)
	}
	if len(staff) != len(DefaultsForRole(user.RoleFuncionario)) {
		t.Errorf("staff must get role defaults, got %v", staff)
	}

	custom, err := resolver.EffectivePermissions(ctx, 4)
	if err != nil {
		t.Fatalf("EffectivePermissions failed: %v", err)
	}
	if len(custom) != 1 || custom[0] != KeyVendasRealizar {
		t.Errorf("custom user keys\nwant: [%s]\ngot:  %v", KeyVendasRealizar, custom)
	}
}

func TestResolver_SetGrant(t *testing.T) {
	repo := newFakePermissionRepo(AllKeys...)
	users := &fakeUserRepo{users: map[int64]*user.User{
		4: testUser(4, user.RoleFuncionario, true),
	}}
	resolver := NewResolver(users, repo)
	ctx := context.Background()

	if err := resolver.SetGrant(ctx, 4, KeyVendasRealizar, true); err != nil {
		t.Fatalf("SetGrant failed: %v", err)
	}
	got, err := resolver.HasPermission(ctx, 4, KeyVendasRealizar)
	if err != nil || !got {
		t.Fatalf("expected grant to take effect, got=%v err=%v", got, err)
	}

	// Flipping the same grant to false revokes it.
	if err := resolver.SetGrant(ctx, 4, KeyVendasRealizar, false); err != nil {
		t.Fatalf("SetGrant failed: %v", err)
	}
	got, err = resolver.HasPermission(ctx, 4, KeyVendasRealizar)
	if err != nil || got {
		t.Fatalf("expected grant to be revoked, got=%v err=%v", got, err)
	}

	if err := resolver.SetGrant(ctx, 4, "relatorios_exportar", true); !apperror.IsNotFound(err) {
		t.Fatalf("unknown key must be rejected, got %v", err)
	}
}

func TestRoleDefaults(t *testing.T) {
	if !RoleHasDefault(user.RoleAdmin, KeyEstoqueGerenciar) {
		t.Error("admin default must include stock management")
	}
	if RoleHasDefault(user.RoleFuncionario, KeyEstoqueGerenciar) {
		t.Error("staff default must not include stock management")
	}
	if got := DefaultsForRole(user.Role("UNKNOWN")); len(got) != 0 {
		t.Errorf("unknown role must resolve to an empty set, got %v", got)
	}
}
