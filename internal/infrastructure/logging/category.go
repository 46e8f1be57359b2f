package logging

type Category string
type SubCategory string
type ExtraKey string

const (
	General         Category = "General"
	Internal        Category = "Internal"
	Relay           Category = "Relay"
	Validation      Category = "Validation"
	RequestResponse Category = "RequestResponse"
)

const (
	// General
	Startup      SubCategory = "Startup"
	Shutdown     SubCategory = "Shutdown"
	RateLimiting SubCategory = "RateLimiting"

	// Relay
	RoomLifecycle SubCategory = "RoomLifecycle"
	Membership    SubCategory = "Membership"
	Broadcast     SubCategory = "Broadcast"
	Transport     SubCategory = "Transport"
)

const (
	AppName      ExtraKey = "AppName"
	LoggerName   ExtraKey = "Logger"
	RoomName     ExtraKey = "RoomName"
	Codename     ExtraKey = "Codename"
	ClientID     ExtraKey = "ClientId"
	Participants ExtraKey = "Participants"
	ClientIp     ExtraKey = "ClientIp"
	Method       ExtraKey = "Method"
	StatusCode   ExtraKey = "StatusCode"
	Path         ExtraKey = "Path"
	Latency      ExtraKey = "Latency"
	ErrorMessage ExtraKey = "ErrorMessage"
)
