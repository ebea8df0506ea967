package auth

const (
	PermOrgRead           = "org.read"
	PermOrgWrite          = "org.write"
	PermInspectionsRead   = "inspections.read"
	PermInspectionsImport = "inspections.import"
	PermRecordsRead       = "records.read"
	PermRecordsWrite      = "records.write"
	PermGenerationRun     = "generation.run"
	PermReportsRead       = "reports.read"
)

var RolePermissions = map[string][]string{
	RoleAdmin: {
		PermOrgRead,
		PermOrgWrite,
		PermInspectionsRead,
		PermInspectionsImport,
		PermRecordsRead,
		PermRecordsWrite,
		PermGenerationRun,
		PermReportsRead,
	},
	RoleManager: {
		PermOrgRead,
		PermInspectionsRead,
		PermInspectionsImport,
		PermRecordsRead,
		PermRecordsWrite,
		PermGenerationRun,
		PermReportsRead,
	},
	RoleEmployee: {
		PermInspectionsRead,
		PermRecordsRead,
	},
}

func HasPermission(role, permission string) bool {
	for _, candidate := range RolePermissions[role] {
		if candidate == permission {
			return true
		}
	}
	return false
}
