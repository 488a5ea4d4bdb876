package handlers

const (
	BatchPath   = "/objects/batch"
	ContentType = "application/vnd.git-lfs+json"

	TransferBasic  = "basic"
	HashAlgoSHA256 = "sha256"

	OperationUpload   = "upload"
	OperationDownload = "download"
)

// BatchRequest represents a batch request payload.
//
// https://github.com/git-lfs/git-lfs/blob/main/docs/api/batch.md#requests
type BatchRequest struct {
	Operation string                `json:"operation"`
	Objects   []*BatchRequestObject `json:"objects" binding:"dive"`
	Transfers []string              `json:"transfers,omitempty"`
	Ref       map[string]string     `json:"ref,omitempty"`
	HashAlgo  string                `json:"hash_algo,omitempty"`
}

// BatchRequestObject is the object item of a BatchRequest
type BatchRequestObject struct {
	OID  string `json:"oid" binding:"required"`
	Size int64  `json:"size" binding:"gte=0"`
}

// BatchResponse represents a batch response payload.
//
// https://github.com/git-lfs/git-lfs/blob/main/docs/api/batch.md#successful-responses
type BatchResponse struct {
	Transfer string                 `json:"transfer"`
	Objects  []*BatchObjectResponse `json:"objects"`
	HashAlgo string                 `json:"hash_algo"`
}

// BatchObjectResponse is the object item of a BatchResponse. It carries actions,
// an error, or neither when the object is already stored.
type BatchObjectResponse struct {
	OID           string                                `json:"oid"`
	Size          int64                                 `json:"size"`
	Authenticated bool                                  `json:"authenticated"`
	Actions       map[string]*BatchObjectActionResponse `json:"actions,omitempty"`
	Error         *BatchObjectError                     `json:"error,omitempty"`
}

// BatchObjectActionResponse is the action item of a BatchObjectResponse
type BatchObjectActionResponse struct {
	Href      string            `json:"href"`
	Header    map[string]string `json:"header,omitempty"`
	ExpiresIn int               `json:"expires_in"`
}

type BatchObjectError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-200 answer.
type ErrorResponse struct {
	Message string `json:"message"`
}
