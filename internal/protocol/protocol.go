// Package protocol defines the frames exchanged with the host application
// over the channel websocket, the command names it may invoke and the
// structured error both directions share.
package protocol

import (
	"errors"
	"fmt"
)

const (
	CodePushy       = "PUSHY ERROR"
	CodeUnsupported = "UNSUPPORTED"
)

const (
	ResultSuccess = "success"
	ResultTrue    = "true"
	ResultFalse   = "false"
)

// Commands the host may call.
const (
	MethodListen                   = "listen"
	MethodRegister                 = "register"
	MethodIsRegistered             = "isRegistered"
	MethodGetToken                 = "getToken"
	MethodGetAPNsToken             = "getAPNsToken"
	MethodSubscribe                = "subscribe"
	MethodMultiSubscribe           = "multiSubscribe"
	MethodMultiTopicSubscribe      = "multiTopicSubscribe"
	MethodUnsubscribe              = "unsubscribe"
	MethodNotify                   = "notify"
	MethodToggleInAppBanner        = "toggleInAppBanner"
	MethodSetCriticalAlertOption   = "setCriticalAlertOption"
	MethodSetEnterpriseConfig      = "setEnterpriseConfig"
	MethodToggleMethodSwizzling    = "toggleMethodSwizzling"
	MethodClearBadge               = "clearBadge"
	MethodSetAppID                 = "setAppId"
	MethodToggleNotifications      = "toggleNotifications"
	MethodSetHeartbeatInterval     = "setHeartbeatInterval"
	MethodSetNotificationIcon      = "setNotificationIcon"
	MethodRequestStoragePermission = "requestStoragePermission"
)

// Error is the structured failure reported on either channel. Details is
// always encoded, as null when unset.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// PushyError wraps an SDK or bridge failure with the fixed error code.
func PushyError(err error) *Error {
	var pe *Error
	if errors.As(err, &pe) {
		return pe
	}
	return &Error{Code: CodePushy, Message: err.Error()}
}

// Unsupported reports a command outside the known set.
func Unsupported(method string) *Error {
	return &Error{
		Code:    CodeUnsupported,
		Message: fmt.Sprintf("unsupported command %q", method),
	}
}

// Call is one host command with its positional arguments.
type Call struct {
	Method string
	Args   Args
}
