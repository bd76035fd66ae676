package rpc

const (
	AuthServiceName       = "settleup.v1.AuthService"
	EventServiceName      = "settleup.v1.EventService"
	SettlementServiceName = "settleup.v1.SettlementService"
)

const (
	AuthRegisterProcedure       = "/" + AuthServiceName + "/Register"
	AuthLoginProcedure          = "/" + AuthServiceName + "/Login"
	AuthIssueCSRFTokenProcedure = "/" + AuthServiceName + "/IssueCSRFToken"
	AuthUpdateHandleProcedure   = "/" + AuthServiceName + "/UpdateHandle"

	EventCreateProcedure     = "/" + EventServiceName + "/CreateEvent"
	EventAddExpenseProcedure = "/" + EventServiceName + "/AddExpense"
	EventListDuesProcedure   = "/" + EventServiceName + "/ListDues"

	SettlementRecordPaymentProcedure = "/" + SettlementServiceName + "/RecordPayment"
)

// CSRFHeader carries the anti-forgery token on state-changing requests.
const CSRFHeader = "X-CSRFToken"
