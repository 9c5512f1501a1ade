package entities

// QueryType identifies a supported looking glass query
type QueryType string

const (
	QueryBGPRoute     QueryType = "bgp_route"
	QueryBGPCommunity QueryType = "bgp_community"
	QueryBGPASPath    QueryType = "bgp_aspath"
	QueryPing         QueryType = "ping"
	QueryTraceroute   QueryType = "traceroute"
)

// QueryTypes lists every supported query type
func QueryTypes() []QueryType {
	return []QueryType{
		QueryBGPRoute,
		QueryBGPCommunity,
		QueryBGPASPath,
		QueryPing,
		QueryTraceroute,
	}
}

// IsValid reports whether the query type is one of the supported set
func (qt QueryType) IsValid() bool {
	for _, known := range QueryTypes() {
		if qt == known {
			return true
		}
	}
	return false
}

// QueryRequest carries one looking glass query; immutable, one per invocation
type QueryRequest struct {
	Location string
	Type     QueryType
	Target   string
}
