package oicp

import (
	"github.com/charging-platform/oicp-gateway/internal/domain/serialization"
)

// OICP 2.x 负载命名空间。公共类型（StatusCode、Address、GeoCoordinates、Identification）
// 在所有操作的命名空间中复用
var (
	NSCommonTypes        = serialization.Namespace{Prefix: "CommonTypes", URI: "http://www.hubject.com/b2b/services/commontypes/v2.0"}
	NSEVSEData           = serialization.Namespace{Prefix: "EVSEData", URI: "http://www.hubject.com/b2b/services/evsedata/v2.0"}
	NSEVSEStatus         = serialization.Namespace{Prefix: "EVSEStatus", URI: "http://www.hubject.com/b2b/services/evsestatus/v2.0"}
	NSAuthorization      = serialization.Namespace{Prefix: "Authorization", URI: "http://www.hubject.com/b2b/services/authorization/v2.0"}
	NSAuthenticationData = serialization.Namespace{Prefix: "AuthenticationData", URI: "http://www.hubject.com/b2b/services/authenticationdata/v2.0"}
	NSReservation        = serialization.Namespace{Prefix: "Reservation", URI: "http://www.hubject.com/b2b/services/reservation/v1.0"}
	NSDynamicPricing     = serialization.Namespace{Prefix: "DynamicPricing", URI: "http://www.hubject.com/b2b/services/dynamicpricing/v1.0"}
)

// ct 公共类型命名空间下的限定名
func ct(local string) serialization.QName {
	return NSCommonTypes.Name(local)
}

// 根元素名称
var (
	RootPullEVSEData                    = NSEVSEData.Name("eRoamingPullEvseData")
	RootEVSEData                        = NSEVSEData.Name("eRoamingEvseData")
	RootPullEVSEStatus                  = NSEVSEStatus.Name("eRoamingPullEvseStatus")
	RootPullEVSEStatusByID              = NSEVSEStatus.Name("eRoamingPullEvseStatusById")
	RootPullEVSEStatusByOperatorID      = NSEVSEStatus.Name("eRoamingPullEvseStatusByOperatorId")
	RootEVSEStatus                      = NSEVSEStatus.Name("eRoamingEvseStatus")
	RootEVSEStatusByID                  = NSEVSEStatus.Name("eRoamingEvseStatusById")
	RootPullPricingProductData          = NSDynamicPricing.Name("eRoamingPullPricingProductData")
	RootPricingProductData              = NSDynamicPricing.Name("eRoamingPricingProductData")
	RootPullEVSEPricing                 = NSDynamicPricing.Name("eRoamingPullEVSEPricing")
	RootEVSEPricing                     = NSDynamicPricing.Name("eRoamingEVSEPricing")
	RootPushAuthenticationData          = NSAuthenticationData.Name("eRoamingPushAuthenticationData")
	RootAuthorizeRemoteStart            = NSAuthorization.Name("eRoamingAuthorizeRemoteStart")
	RootAuthorizeRemoteStop             = NSAuthorization.Name("eRoamingAuthorizeRemoteStop")
	RootAuthorizeRemoteReservationStart = NSReservation.Name("eRoamingAuthorizeRemoteReservationStart")
	RootAuthorizeRemoteReservationStop  = NSReservation.Name("eRoamingAuthorizeRemoteReservationStop")
	RootGetChargeDetailRecords          = NSAuthorization.Name("eRoamingGetChargeDetailRecords")
	RootChargeDetailRecords             = NSAuthorization.Name("eRoamingChargeDetailRecords")
	RootChargeDetailRecord              = NSAuthorization.Name("eRoamingChargeDetailRecord")
	RootAcknowledgement                 = NSCommonTypes.Name("eRoamingAcknowledgement")
)
