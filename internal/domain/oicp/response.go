package oicp

// Response 入站响应的公共接口，供传输层统一记录结果码
type Response interface {
	Status() StatusCode
}

func (r PullEVSEDataResponse) Status() StatusCode               { return r.StatusCode }
func (r PullEVSEStatusResponse) Status() StatusCode             { return r.StatusCode }
func (r PullEVSEStatusByIDResponse) Status() StatusCode         { return r.StatusCode }
func (r PullEVSEStatusByOperatorIDResponse) Status() StatusCode { return r.StatusCode }
func (r PullPricingProductDataResponse) Status() StatusCode     { return r.StatusCode }
func (r PullEVSEPricingResponse) Status() StatusCode            { return r.StatusCode }
func (r GetChargeDetailRecordsResponse) Status() StatusCode     { return r.StatusCode }
func (a Acknowledgement[T]) Status() StatusCode                 { return a.StatusCode }

// Accepted 应答的 Result 字段
func (a Acknowledgement[T]) Accepted() bool { return a.Result }
