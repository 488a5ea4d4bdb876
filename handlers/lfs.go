package handlers

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	logger "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vela-games/lfsbatch/auth"
	"github.com/vela-games/lfsbatch/config"
	"github.com/vela-games/lfsbatch/exporter"
	"github.com/vela-games/lfsbatch/services"
)

// UserContextKey is where the auth middleware stores the *auth.UserContext.
const UserContextKey = "lfsbatch.user"

const objectNotFound = "Object not found"

type ConfigLoader interface {
	Load(ctx context.Context) (*config.Runtime, error)
}

type LFSHandler struct {
	promCollector *exporter.LFSBatchCollector
	awsService    services.AWSService
	config        ConfigLoader
	concurrency   int
}

func NewLFSHandler(awsService services.AWSService, cfg ConfigLoader, collector *exporter.LFSBatchCollector, concurrency int) *LFSHandler {
	if concurrency < 1 {
		concurrency = 1
	}

	return &LFSHandler{
		promCollector: collector,
		awsService:    awsService,
		config:        cfg,
		concurrency:   concurrency,
	}
}

func (l LFSHandler) PostBatch(c *gin.Context) {
	var user *auth.UserContext
	if v, ok := c.Get(UserContextKey); ok {
		user, _ = v.(*auth.UserContext)
	}

	batchRequest, err := parseBatchRequest(c)
	if err != nil {
		l.countRequest("", webError(c, err))
		return
	}

	var operation string
	if batchRequest != nil {
		operation = batchRequest.Operation
	}

	batchResponse, err := l.Batch(c.Request.Context(), batchRequest, user)
	if err != nil {
		l.countRequest(operation, webError(c, err))
		return
	}

	l.countRequest(operation, http.StatusOK)
	c.Header("Content-Type", ContentType)
	c.JSON(http.StatusOK, batchResponse)
}

// parseBatchRequest returns a nil request for an empty body; Batch reports it.
func parseBatchRequest(c *gin.Context) (*BatchRequest, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, ValidationError.New("Could not read body: %v", err)
	}

	if trimmed := bytes.TrimSpace(body); len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var batchRequest BatchRequest
	if err := binding.JSON.BindBody(body, &batchRequest); err != nil {
		return nil, ValidationError.New("Invalid batch request: %v", err)
	}

	return &batchRequest, nil
}

// Batch decides, per object, what the client still has to transfer.
func (l LFSHandler) Batch(ctx context.Context, req *BatchRequest, user *auth.UserContext) (*BatchResponse, error) {
	if req == nil {
		return nil, ValidationError.New("Body was not specified")
	}

	if req.Transfers != nil && !contains(req.Transfers, TransferBasic) {
		return nil, ValidationError.New("Only basic transfer is supported")
	}

	if req.HashAlgo != "" && req.HashAlgo != HashAlgoSHA256 {
		return nil, ValidationError.New("Only sha256 hash algorithm is supported")
	}

	for i, object := range req.Objects {
		if object == nil {
			return nil, ValidationError.New("Object at index %d is empty", i)
		}
	}

	if req.Operation == "" {
		return nil, ValidationError.New("Operation was not specified")
	}

	if user == nil {
		return nil, AuthError.New("auth not present")
	}

	var resolve func(ctx context.Context, rt *config.Runtime, object *BatchRequestObject) (*BatchObjectResponse, error)

	switch req.Operation {
	case OperationUpload:
		if !user.Push {
			return nil, PermissionError.New("no permission to write")
		}
		resolve = l.resolveUpload
	case OperationDownload:
		resolve = l.resolveDownload
	default:
		return nil, ValidationError.New("%s operation not supported!", req.Operation)
	}

	rt, err := l.config.Load(ctx)
	if err != nil {
		return nil, err
	}

	logger.Debugf("%s requested %s of %d objects", user.Username, req.Operation, len(req.Objects))

	objects := make([]*BatchObjectResponse, len(req.Objects))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(l.concurrency)

	for i, object := range req.Objects {
		i, object := i, object
		group.Go(func() error {
			resp, err := resolve(groupCtx, rt, object)
			if err != nil {
				return err
			}
			objects[i] = resp
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return &BatchResponse{
		Transfer: TransferBasic,
		HashAlgo: HashAlgoSHA256,
		Objects:  objects,
	}, nil
}

// resolveUpload leaves stored objects without an action and hands out a
// size-bound upload URL for the rest.
func (l LFSHandler) resolveUpload(ctx context.Context, rt *config.Runtime, object *BatchRequestObject) (*BatchObjectResponse, error) {
	resp := newObjectResponse(object)

	exists, err := l.awsService.OIDExists(ctx, object.OID)
	if err != nil {
		return nil, err
	}

	if exists {
		l.promCollector.ObjectsPresent.With("operation", OperationUpload).Add(1)
		return resp, nil
	}
	l.promCollector.ObjectsMissing.With("operation", OperationUpload).Add(1)

	link, err := l.awsService.UploadURL(ctx, object.OID, object.Size, rt.UploadTTL())
	if err != nil {
		return nil, err
	}

	resp.Actions = map[string]*BatchObjectActionResponse{
		OperationUpload: newAction(link, rt.UploadExpiration),
	}

	return resp, nil
}

// resolveDownload hands out a download URL for stored objects and a per-object
// 404 for the rest.
func (l LFSHandler) resolveDownload(ctx context.Context, rt *config.Runtime, object *BatchRequestObject) (*BatchObjectResponse, error) {
	resp := newObjectResponse(object)

	exists, err := l.awsService.OIDExists(ctx, object.OID)
	if err != nil {
		return nil, err
	}

	if !exists {
		l.promCollector.ObjectsMissing.With("operation", OperationDownload).Add(1)
		resp.Error = &BatchObjectError{
			Code:    http.StatusNotFound,
			Message: objectNotFound,
		}
		return resp, nil
	}
	l.promCollector.ObjectsPresent.With("operation", OperationDownload).Add(1)

	link, err := l.awsService.DownloadURL(ctx, object.OID, rt.DownloadTTL())
	if err != nil {
		return nil, err
	}

	resp.Actions = map[string]*BatchObjectActionResponse{
		OperationDownload: newAction(link, rt.DownloadExpiration),
	}

	return resp, nil
}

func (l LFSHandler) countRequest(operation string, status int) {
	switch operation {
	case OperationUpload, OperationDownload:
	default:
		operation = "other"
	}
	l.promCollector.BatchRequests.With("operation", operation, "status", strconv.Itoa(status)).Add(1)
}

func newObjectResponse(object *BatchRequestObject) *BatchObjectResponse {
	return &BatchObjectResponse{
		OID:           object.OID,
		Size:          object.Size,
		Authenticated: true,
	}
}

func newAction(link *services.Link, expiresIn int) *BatchObjectActionResponse {
	return &BatchObjectActionResponse{
		Href:      link.Href,
		Header:    link.Header,
		ExpiresIn: expiresIn,
	}
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
