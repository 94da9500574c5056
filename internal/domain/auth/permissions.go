package auth

const (
	PermWorkersRead       = "workforce.workers.read"
	PermWorkersWrite      = "workforce.workers.write"
	PermRatesRead         = "workforce.rates.read"
	PermRatesWrite        = "workforce.rates.write"
	PermTimesheetsRead    = "workforce.timesheets.read"
	PermTimesheetsWrite   = "workforce.timesheets.write"
	PermTimesheetsApprove = "workforce.timesheets.approve"
	PermGarnishmentsRead  = "workforce.garnishments.read"
	PermGarnishmentsWrite = "workforce.garnishments.write"
	PermPayrollRead       = "payroll.read"
	PermPayrollRun        = "payroll.run"
	PermPayrollIssue      = "payroll.issue"
	PermPaystubsRead      = "payroll.paystubs.read"
	PermAuditRead         = "audit.read"
	PermSystemAdmin       = "admin.system"
)

var DefaultPermissions = []string{
	PermWorkersRead,
	PermWorkersWrite,
	PermRatesRead,
	PermRatesWrite,
	PermTimesheetsRead,
	PermTimesheetsWrite,
	PermTimesheetsApprove,
	PermGarnishmentsRead,
	PermGarnishmentsWrite,
	PermPayrollRead,
	PermPayrollRun,
	PermPayrollIssue,
	PermPaystubsRead,
	PermAuditRead,
	PermSystemAdmin,
}

var RolePermissions = map[string][]string{
	RoleWorker: {
		PermTimesheetsRead,
		PermTimesheetsWrite,
		PermPaystubsRead,
	},
	RoleCoordinator: {
		PermWorkersRead,
		PermWorkersWrite,
		PermRatesRead,
		PermTimesheetsRead,
		PermTimesheetsWrite,
		PermTimesheetsApprove,
		PermGarnishmentsRead,
		PermPaystubsRead,
	},
	RolePayrollAdmin: {
		PermWorkersRead,
		PermWorkersWrite,
		PermRatesRead,
		PermRatesWrite,
		PermTimesheetsRead,
		PermTimesheetsWrite,
		PermTimesheetsApprove,
		PermGarnishmentsRead,
		PermGarnishmentsWrite,
		PermPayrollRead,
		PermPayrollRun,
		PermPayrollIssue,
		PermPaystubsRead,
		PermAuditRead,
	},
	RoleSystemAdmin: {
		PermSystemAdmin,
	},
}
