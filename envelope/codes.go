package envelope

// Error codes emitted in the errors array.
const (
	CodeInternalError         ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest            ErrorCode = "BAD_REQUEST"
	CodeUnauthorized          ErrorCode = "UNAUTHORIZED"
	CodeTooManyRequests       ErrorCode = "TOO_MANY_REQUESTS"
	CodeMissingQueryParameter ErrorCode = "MISSING_QUERY_PARAMETER"
	CodeMissingHeader         ErrorCode = "MISSING_HEADER"
	CodeMissingBodyProperty   ErrorCode = "MISSING_BODY_PROPERTY"
	CodeInvalidQueryValue     ErrorCode = "INVALID_QUERY_VALUE"
	CodeInvalidHeaderValue    ErrorCode = "INVALID_HEADER_VALUE"
	CodeInvalidBodyValue      ErrorCode = "INVALID_BODY_VALUE"
	CodeAuthorizationInvalid  ErrorCode = "AUTHORIZATION_INVALID"
	CodeAuthorizationRequired ErrorCode = "AUTHORIZATION_REQUIRED"
	CodeEmailNotVerified      ErrorCode = "ACCOUNT_EMAIL_NOT_VERIFIED"
	CodeVerificationIDInvalid ErrorCode = "VERIFICATION_ID_INVALID"
	CodeResetIDInvalid        ErrorCode = "RESET_ID_INVALID"
	CodeResetIDExpired        ErrorCode = "RESET_ID_EXPIRED"
)
