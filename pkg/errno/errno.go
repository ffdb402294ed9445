package errno

import (
	"errors"
	"fmt"
)

const (
	SuccessCode             = 0
	ServiceErrCode          = 10001
	ParamErrCode            = 10002
	AuthorizationFailedCode = 10003
	RetrievalErrCode        = 10004
	WriteErrCode            = 10005
	MysqlErrCode            = 10006
	RedisErrCode            = 10007
	MqErrCode               = 10008
	CommentNotFoundCode     = 10009
	PublicationNotFoundCode = 10010
)

type ErrNo struct {
	ErrCode int64
	ErrMsg  string
}

func (e ErrNo) Error() string {
	return fmt.Sprintf("err_code=%d, err_msg=%s", e.ErrCode, e.ErrMsg)
}

func NewErrNo(code int64, msg string) ErrNo {
	return ErrNo{
		ErrCode: code,
		ErrMsg:  msg,
	}
}

func (e ErrNo) WithMessage(msg string) ErrNo {
	e.ErrMsg = msg
	return e
}

var (
	Success                = NewErrNo(SuccessCode, "Success")
	ServiceErr             = NewErrNo(ServiceErrCode, "Service is unable to start successfully")
	ParamErr               = NewErrNo(ParamErrCode, "Wrong Parameter has been given")
	AuthorizationFailedErr = NewErrNo(AuthorizationFailedCode, "Authorization failed")

	// RetrievalErr covers the read path: the caller surfaces a retry
	// affordance, nothing retries automatically.
	RetrievalErr = NewErrNo(RetrievalErrCode, "Failed to load comments")
	// WriteErr covers create/delete/like mutations.
	WriteErr = NewErrNo(WriteErrCode, "Failed to write comment data")

	MysqlErr = NewErrNo(MysqlErrCode, "Mysql operation failed")
	RedisErr = NewErrNo(RedisErrCode, "Redis operation failed")
	MqErr    = NewErrNo(MqErrCode, "Message queue operation failed")

	CommentNotFoundErr     = NewErrNo(CommentNotFoundCode, "Comment does not exist")
	PublicationNotFoundErr = NewErrNo(PublicationNotFoundCode, "Publication does not exist")
)

// ConvertErr converts any error to an ErrNo, keeping the original message
// on the generic service error when the type is unknown.
func ConvertErr(err error) ErrNo {
	Err := ErrNo{}
	if errors.As(err, &Err) {
		return Err
	}
	s := ServiceErr
	s.ErrMsg = err.Error()
	return s
}
