package services

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/zeebo/errs"
)

// StorageError is the class of unexpected object store failures. A missing
// object is not a StorageError.
var StorageError = errs.Class("storage")

// emptyBodyMD5 is the base64 MD5 digest of zero bytes.
const emptyBodyMD5 = "1B2M2Y8AsgTpgAmY7PhCfg=="

type S3 interface {
	HeadObjectWithContext(ctx aws.Context, input *s3.HeadObjectInput, opts ...request.Option) (*s3.HeadObjectOutput, error)
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
	GetObjectRequest(input *s3.GetObjectInput) (req *request.Request, output *s3.GetObjectOutput)
	PutObjectRequest(input *s3.PutObjectInput) (req *request.Request, output *s3.PutObjectOutput)
}

// Link is a capability URL plus the headers the client has to send with it.
type Link struct {
	Href   string
	Header map[string]string
}

type AWSService interface {
	OIDExists(ctx context.Context, oid string) (bool, error)
	DownloadURL(ctx context.Context, oid string, ttl time.Duration) (*Link, error)
	UploadURL(ctx context.Context, oid string, size int64, ttl time.Duration) (*Link, error)
	FetchObject(ctx context.Context, key string) ([]byte, error)
}

type AWS struct {
	bucket   string
	s3Client S3
}

func NewAWSService(bucket string, useAccelerate bool) (AWSService, error) {
	session, err := GetAWSSession()
	if err != nil {
		return nil, StorageError.Wrap(err)
	}

	s3Client := s3.New(session, &aws.Config{
		DisableRestProtocolURICleaning: aws.Bool(true),
		S3UseAccelerate:                aws.Bool(useAccelerate),
	})

	return &AWS{
		bucket:   bucket,
		s3Client: s3Client,
	}, nil
}

func GetAWSSession() (*session.Session, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
	})

	if err != nil {
		return nil, err
	}

	return sess, nil
}

func (a AWS) OIDExists(ctx context.Context, oid string) (bool, error) {
	_, err := a.s3Client.HeadObjectWithContext(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(oid),
	})

	if err != nil {
		if isNotFound(err) {
			return false, nil
		}

		return false, StorageError.Wrap(err)
	}

	return true, nil
}

func (a AWS) DownloadURL(ctx context.Context, oid string, ttl time.Duration) (*Link, error) {
	req, _ := a.s3Client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(oid),
	})
	req.SetContext(ctx)

	urlStr, err := req.Presign(ttl)
	if err != nil {
		return nil, StorageError.Wrap(err)
	}

	return &Link{Href: urlStr}, nil
}

// UploadURL presigns a PUT whose signature covers Content-Length, so the store
// refuses a body of any other size. The signer skips a zero Content-Length, so
// empty objects are bound through the MD5 of the empty body instead.
func (a AWS) UploadURL(ctx context.Context, oid string, size int64, ttl time.Duration) (*Link, error) {
	input := &s3.PutObjectInput{
		Bucket:        aws.String(a.bucket),
		Key:           aws.String(oid),
		ContentLength: aws.Int64(size),
	}
	if size == 0 {
		input.ContentMD5 = aws.String(emptyBodyMD5)
	}

	req, _ := a.s3Client.PutObjectRequest(input)
	req.SetContext(ctx)

	urlStr, signedHeaders, err := req.PresignRequest(ttl)
	if err != nil {
		return nil, StorageError.Wrap(err)
	}

	header := flattenHeader(signedHeaders)
	header["Content-Length"] = strconv.FormatInt(size, 10)
	if size == 0 {
		header["Content-Md5"] = emptyBodyMD5
	}

	return &Link{Href: urlStr, Header: header}, nil
}

func (a AWS) FetchObject(ctx context.Context, key string) ([]byte, error) {
	out, err := a.s3Client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(a.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, StorageError.Wrap(err)
	}

	if out.Body == nil {
		return nil, StorageError.New("s3://%s/%s has no body", a.bucket, key)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, StorageError.Wrap(err)
	}

	return data, nil
}

func isNotFound(err error) bool {
	var reqErr awserr.RequestFailure
	if errors.As(err, &reqErr) && reqErr.StatusCode() == http.StatusNotFound {
		return true
	}

	var aerr awserr.Error
	if errors.As(err, &aerr) {
		switch aerr.Code() {
		case "NotFound", s3.ErrCodeNoSuchKey:
			return true
		}
	}

	return false
}

func flattenHeader(h http.Header) map[string]string {
	header := make(map[string]string, len(h))
	for key := range h {
		// Host is implied by the URL.
		if http.CanonicalHeaderKey(key) == "Host" {
			continue
		}
		header[http.CanonicalHeaderKey(key)] = h.Get(key)
	}
	return header
}
