package s3

import (
	"context"
	stderrs "errors"
	"fmt"

	"github.com/aws/smithy-go"
	"github.com/olusolaa/oneroster-parity/internal/errors"
)

var authErrorCodes = map[string]bool{
	"AccessDenied":          true,
	"AuthFailure":           true,
	"UnauthorizedOperation": true,
	"InvalidAccessKeyId":    true,
	"SignatureDoesNotMatch": true,
	"ExpiredToken":          true,
	"InvalidClientTokenId":  true,
}

// HandleError maps an AWS SDK error onto an application error code.
// operation names the API call, target the bucket or object involved.
func HandleError(ctx context.Context, operation, target string, err error) error {
	if err == nil {
		return errors.New(errors.CodeInternal, fmt.Sprintf("unexpected nil error from %s", operation))
	}

	if ctx.Err() != nil {
		return errors.Wrap(ctx.Err(), errors.CodeTimeout, fmt.Sprintf("context done during %s", operation))
	}

	var apiErr smithy.APIError
	if stderrs.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch {
		case authErrorCodes[code]:
			return errors.WrapUserFacing(err, errors.CodeBackendAuth,
				fmt.Sprintf("AWS denied %s on %s", operation, target),
				"Check the AWS credentials and the bucket policy.")
		case code == "NoSuchBucket":
			return errors.WrapUserFacing(err, errors.CodeArtifactWriteError,
				fmt.Sprintf("bucket for %s does not exist", target),
				"Create the bucket or fix artifacts.bucket.")
		}
	}

	return errors.Wrap(err, errors.CodeArtifactWriteError, fmt.Sprintf("%s failed for %s", operation, target))
}
