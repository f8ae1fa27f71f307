package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidExecuteOrder  ErrorCode = 102
	ErrCodeInvalidTakeProfit    ErrorCode = 103
	ErrCodeInvalidStopLoss      ErrorCode = 104
	ErrCodeInsufficientData     ErrorCode = 105
	ErrCodeInvalidPeriod        ErrorCode = 106
	ErrCodeUnsortedBars         ErrorCode = 107

	// Data/Resource errors (200-299)
	ErrCodeFetchFailed      ErrorCode = 200 // transient range start
	ErrCodeStoreUnavailable ErrorCode = 201
	ErrCodeFeedReadFailed   ErrorCode = 202
	ErrCodeFeedWriteFailed  ErrorCode = 203
	ErrCodeClockUnavailable ErrorCode = 204 // transient range end
	ErrCodeCloseNotFound    ErrorCode = 210
	ErrCodeQueryFailed      ErrorCode = 211

	// Indicator errors (300-399)
	ErrCodeIndicatorCalculation ErrorCode = 300
	ErrCodeSeriesLengthMismatch ErrorCode = 301

	// Classification errors (400-499)
	ErrCodeInvalidVote       ErrorCode = 400
	ErrCodeInvalidStrategyID ErrorCode = 401

	// Risk errors (500-599)
	ErrCodeFamilyNotFound ErrorCode = 500

	// Broker errors (600-699)
	ErrCodeOrderFailed       ErrorCode = 600
	ErrCodeOrderCancelFailed ErrorCode = 601
	ErrCodePositionNotFound  ErrorCode = 602
	ErrCodeAccountFailed     ErrorCode = 603
	ErrCodeBrokerResponse    ErrorCode = 604

	// Session errors (700-799)
	ErrCodeSessionInitFailed ErrorCode = 700 // fatal range start
	ErrCodeStatusInitFailed  ErrorCode = 701
	ErrCodeCatalogLoadFailed ErrorCode = 702 // fatal range end
	ErrCodeInvalidPhase      ErrorCode = 710
)
