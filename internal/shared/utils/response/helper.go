package response

import "github.com/gin-gonic/gin"

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondWithWarning answers 200 with the unchanged payload and a
// user-facing warning, for requests that were refused without failing.
func RespondWithWarning(c *gin.Context, code int, message string, data interface{}, warning string) {
	c.JSON(code, StandardApiResponse{
		Status:     StatusSuccess,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Warning:    warning,
	})
}

// RespondRedirect tells the client where to navigate next. Codes below
// 400 are reported as success.
func RespondRedirect(c *gin.Context, code int, message string, data interface{}, location string) {
	status := StatusSuccess
	if code >= 400 {
		status = StatusError
	}
	c.JSON(code, StandardApiResponse{
		Status:     status,
		Data:       data,
		StatusCode: code,
		Message:    message,
		Redirect:   location,
	})
}
