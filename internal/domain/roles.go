package domain

// Role é um tipo string para representar o papel do usuário no sistema.
type Role string

// Constantes para os papéis de usuário.
const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

// Permission é uma capacidade nomeada que um papel pode possuir.
type Permission string

// Permissões reconhecidas pelas rotas administrativas.
const (
	PermissionGetUsers       Permission = "getUsers"
	PermissionManageUsers    Permission = "manageUsers"
	PermissionManageContacts Permission = "manageContacts"
)

// rolePermissions é a tabela estática papel → permissões, montada uma única
// vez na inicialização do processo. Dados de configuração, não estado mutável.
var rolePermissions = map[Role]map[Permission]bool{
	RoleUser:  permissionSet(),
	RoleAdmin: permissionSet(PermissionGetUsers, PermissionManageUsers, PermissionManageContacts),
}

func permissionSet(perms ...Permission) map[Permission]bool {
	set := make(map[Permission]bool, len(perms))
	for _, p := range perms {
		set[p] = true
	}
	return set
}

// HasPermission decide se o papel possui a permissão informada.
// Papel desconhecido não possui permissão alguma (fail-closed).
func HasPermission(role Role, perm Permission) bool {
	perms, ok := rolePermissions[role]
	if !ok {
		return false
	}
	return perms[perm]
}

// IsValidRole informa se o papel existe na tabela estática.
func IsValidRole(role Role) bool {
	_, ok := rolePermissions[role]
	return ok
}
