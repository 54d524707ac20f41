package yozie

type Access byte

const (
	AccessUndefined Access = 0
	AccessForbidden Access = 1
	AccessAllowed   Access = 2
)

func (a Access) merge(b Access) Access {
	switch {
	case a == AccessUndefined:
		return b
	case b == AccessUndefined:
		return a
	default:
		return b
	}
}

type PermissionName string

const (
	PermissionManageProducts PermissionName = "products.manage"
	PermissionManageCoupons  PermissionName = "coupons.manage"
	PermissionManageOrders   PermissionName = "orders.manage"
	PermissionPlaceOrders    PermissionName = "orders.place"
)

type RoleId string

type Role struct {
	Id          RoleId
	Permissions map[PermissionName]bool
}

var (
	RoleIdVendor RoleId = "vendor"
	RoleIdBuyer  RoleId = "buyer"
)

var AllRoles map[RoleId]Role = mapRolesById(
	Role{
		Id: RoleIdVendor,
		Permissions: map[PermissionName]bool{
			PermissionManageProducts: true,
			PermissionManageCoupons:  true,
			PermissionManageOrders:   true,
		},
	},
	Role{
		Id: RoleIdBuyer,
		Permissions: map[PermissionName]bool{
			PermissionPlaceOrders: true,
		},
	},
)

func mapRolesById(roles ...Role) map[RoleId]Role {
	rolesMap := make(map[RoleId]Role)
	for _, role := range roles {
		if _, ok := rolesMap[role.Id]; ok {
			panic("Duplicated role id: `" + role.Id + "`!")
		}
		rolesMap[role.Id] = role
	}
	return rolesMap
}

func (role Role) Access(name PermissionName) Access {
	hasPermission, ok := role.Permissions[name]
	switch {
	case !ok:
		return AccessUndefined
	case hasPermission:
		return AccessAllowed
	default:
		return AccessForbidden
	}
}

type Roles []Role

func (roles Roles) Access(permission PermissionName) Access {
	access := AccessUndefined
	for _, role := range roles {
		access = access.merge(role.Access(permission))
	}
	return access
}
