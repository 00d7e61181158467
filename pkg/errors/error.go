package errors

// ErrorCode represents a specific error code in the system.
type ErrorCode string

const (
	// GeneralInternalServerError represents a generic internal server error.
	GeneralInternalServerError ErrorCode = "general_internal_server_error"
	// GeneralBadRequestError represents a generic bad request error.
	GeneralBadRequestError ErrorCode = "general_bad_request_error"
	// GeneralNotFoundError represents a generic not found error.
	GeneralNotFoundError ErrorCode = "general_not_found_error"
	// GeneralUnauthorizedError represents a generic unauthorized error.
	GeneralUnauthorizedError ErrorCode = "general_unauthorized_error"
	// GeneralRepositoryError represents a generic repository error.
	GeneralRepositoryError ErrorCode = "general_repository_error"

	// ValidationError is returned when an order request fails validation. Nothing is stored or published.
	ValidationError ErrorCode = "validation_error"
	// PersistenceError is returned when the command store rejects a read or write.
	PersistenceError ErrorCode = "persistence_error"
	// DeliveryError is returned when a message could not be handed to the bus.
	DeliveryError ErrorCode = "delivery_error"
	// CredentialError is returned when no exchange credentials exist for a user.
	CredentialError ErrorCode = "credential_error"
	// ExchangeError is returned when the exchange fails or rejects an order.
	ExchangeError ErrorCode = "exchange_error"
	// ExchangeTimeoutError is returned when an exchange call exceeds its deadline.
	ExchangeTimeoutError ErrorCode = "exchange_timeout_error"
	// OrderLockedError is returned when another worker currently holds the order.
	OrderLockedError ErrorCode = "order_locked_error"

	// BusConfigError represents an invalid bus configuration.
	BusConfigError ErrorCode = "bus_config_error"

	// RedisConfigError represents an error when the Redis configuration is invalid or nil.
	RedisConfigError ErrorCode = "redis_config_error"
	// RedisConnectionError represents an error when connecting to Redis.
	RedisConnectionError ErrorCode = "redis_connection_error"
	// RedisDisconnectionError represents an error when disconnecting from Redis.
	RedisDisconnectionError ErrorCode = "redis_disconnection_error"
	// RedisPingError represents an error when pinging Redis.
	RedisPingError ErrorCode = "redis_pinging_error"

	// RedisSetNXError represents an error when setting a value in Redis with SetNX.
	RedisSetNXError ErrorCode = "redis_setnx_error"
	// RedisEvalError represents an error when running a script in Redis.
	RedisEvalError ErrorCode = "redis_eval_error"

	// RedisXAddError represents an error when adding entries to a stream in Redis.
	RedisXAddError ErrorCode = "redis_xadd_error"
	// RedisXReadGroupError represents an error when reading from a stream group in Redis.
	RedisXReadGroupError ErrorCode = "redis_xreadgroup_error"
	// RedisXAckError represents an error when acknowledging stream entries in Redis.
	RedisXAckError ErrorCode = "redis_xack_error"
	// RedisXGroupError represents an error when creating a stream consumer group in Redis.
	RedisXGroupError ErrorCode = "redis_xgroup_error"
	// RedisXAutoClaimError represents an error when claiming idle stream entries in Redis.
	RedisXAutoClaimError ErrorCode = "redis_xautoclaim_error"
	// RedisXPendingError represents an error when inspecting pending stream entries in Redis.
	RedisXPendingError ErrorCode = "redis_xpending_error"
)
