package rbac

// Default policy. Participants sign up with role "user"; admins manage content.
var RolePermissions = map[string][]string{
	"user": {
		"quiz:take",
		"quiz:submit",
		"module:view",
		"material:view",
		"material:download",
		"submission:view-own",
		"profile:update",
	},
	"admin": {
		"*", // everything
	},
}
