package common

// RequestIDHeaderName is the HTTP header that carries the request id,
// either supplied by the caller or generated by the server.
const RequestIDHeaderName = "X-Request-ID"

// DateLayout is the wire format of calendar dates (birth dates, range bounds).
const DateLayout = "2006-01-02"

// HealthServiceName is the gRPC health service name reported for the users API.
const HealthServiceName = "userkeeper.Users"
