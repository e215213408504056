package permission

import (
	"stockcontrol/internal/domain/user"
)

// Permission keys. The catalog seed and the role default tables below use
// these; HTTP middleware and domain gates reference them by constant.
const (
	KeyUsuariosCriar          = "usuarios_criar"
	KeyUsuariosEditar         = "usuarios_editar"
	KeyUsuariosVisualizar     = "usuarios_visualizar"
	KeyProdutosCriar          = "produtos_criar"
	KeyProdutosEditar         = "produtos_editar"
	KeyProdutosVisualizar     = "produtos_visualizar"
	KeyClientesCriar          = "clientes_criar"
	KeyClientesEditar         = "clientes_editar"
	KeyClientesVisualizar     = "clientes_visualizar"
	KeyFornecedoresCriar      = "fornecedores_criar"
	KeyFornecedoresEditar     = "fornecedores_editar"
	KeyFornecedoresVisualizar = "fornecedores_visualizar"
	KeyVendasRealizar         = "vendas_realizar"
	KeyVendasVisualizar       = "vendas_visualizar"
	KeyInventarioVisualizar   = "inventario_visualizar"
	KeyEstoqueGerenciar       = "estoque_gerenciar"
)

// AllKeys lists every permission key, in catalog order. Used by the seeder.
var AllKeys = []string{
	KeyUsuariosCriar,
	KeyUsuariosEditar,
	KeyUsuariosVisualizar,
	KeyProdutosCriar,
	KeyProdutosEditar,
	KeyProdutosVisualizar,
	KeyClientesCriar,
	KeyClientesEditar,
	KeyClientesVisualizar,
	KeyFornecedoresCriar,
	KeyFornecedoresEditar,
	KeyFornecedoresVisualizar,
	KeyVendasRealizar,
	KeyVendasVisualizar,
	KeyInventarioVisualizar,
	KeyEstoqueGerenciar,
}

// roleDefaults is the single canonical table of per-role default
// permission sets. Resolution and UI seeding both read from here, so the
// two can never drift. PROPRIETARIO is intentionally absent: owners hold
// every permission unconditionally, before this table is consulted.
var roleDefaults = map[user.Role][]string{
	user.RoleAdmin: {
		KeyUsuariosCriar,
		KeyUsuariosEditar,
		KeyUsuariosVisualizar,
		KeyProdutosCriar,
		KeyProdutosEditar,
		KeyProdutosVisualizar,
		KeyClientesCriar,
		KeyClientesEditar,
		KeyClientesVisualizar,
		KeyFornecedoresCriar,
		KeyFornecedoresEditar,
		KeyFornecedoresVisualizar,
		KeyVendasRealizar,
		KeyVendasVisualizar,
		KeyInventarioVisualizar,
		KeyEstoqueGerenciar,
	},
	user.RoleFuncionario: {
		KeyProdutosVisualizar,
		KeyClientesVisualizar,
		KeyVendasVisualizar,
		KeyUsuariosVisualizar,
		KeyFornecedoresVisualizar,
		KeyInventarioVisualizar,
	},
}

// DefaultsForRole returns a copy of the default permission set for a role.
// Unknown roles get an empty set.
func DefaultsForRole(role user.Role) []string {
	defaults := roleDefaults[role]
	out := make([]string, len(defaults))
	copy(out, defaults)
	return out
}

// RoleHasDefault reports whether key is in the role's default set.
func RoleHasDefault(role user.Role, key string) bool {
	for _, k := range roleDefaults[role] {
		if k == key {
			return true
		}
	}
	return false
}
