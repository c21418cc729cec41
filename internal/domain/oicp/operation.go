package oicp

// Operation OICP操作名称，用于日志、指标和错误诊断
type Operation string

const (
	OperationPullEVSEData                    Operation = "PullEVSEData"
	OperationPullEVSEStatus                  Operation = "PullEVSEStatus"
	OperationPullEVSEStatusByID              Operation = "PullEVSEStatusById"
	OperationPullEVSEStatusByOperatorID      Operation = "PullEVSEStatusByOperatorId"
	OperationPullPricingProductData          Operation = "PullPricingProductData"
	OperationPullEVSEPricing                 Operation = "PullEVSEPricing"
	OperationPushAuthenticationData          Operation = "PushAuthenticationData"
	OperationAuthorizeRemoteStart            Operation = "AuthorizeRemoteStart"
	OperationAuthorizeRemoteStop             Operation = "AuthorizeRemoteStop"
	OperationAuthorizeRemoteReservationStart Operation = "AuthorizeRemoteReservationStart"
	OperationAuthorizeRemoteReservationStop  Operation = "AuthorizeRemoteReservationStop"
	OperationGetChargeDetailRecords          Operation = "GetChargeDetailRecords"
	OperationSendChargeDetailRecord          Operation = "SendChargeDetailRecord"
)

// Operations 所有已知操作
var Operations = []Operation{
	OperationPullEVSEData,
	OperationPullEVSEStatus,
	OperationPullEVSEStatusByID,
	OperationPullEVSEStatusByOperatorID,
	OperationPullPricingProductData,
	OperationPullEVSEPricing,
	OperationPushAuthenticationData,
	OperationAuthorizeRemoteStart,
	OperationAuthorizeRemoteStop,
	OperationAuthorizeRemoteReservationStart,
	OperationAuthorizeRemoteReservationStop,
	OperationGetChargeDetailRecords,
	OperationSendChargeDetailRecord,
}

// String 返回操作名
func (o Operation) String() string {
	return string(o)
}

// IsCommand 是否为返回 Acknowledgement 的命令型操作
func (o Operation) IsCommand() bool {
	switch o {
	case OperationPushAuthenticationData,
		OperationAuthorizeRemoteStart,
		OperationAuthorizeRemoteStop,
		OperationAuthorizeRemoteReservationStart,
		OperationAuthorizeRemoteReservationStop,
		OperationSendChargeDetailRecord:
		return true
	}
	return false
}
