package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pms/backend/internal/domain/shared"
)

func TestGetHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, GetHTTPStatus(shared.CodeTenantNotFound))
	assert.Equal(t, http.StatusUnprocessableEntity, GetHTTPStatus(shared.CodeUnknownOperationKey))
	assert.Equal(t, http.StatusBadGateway, GetHTTPStatus(shared.CodeHandlerFailure))
	assert.Equal(t, http.StatusBadRequest, GetHTTPStatus(ErrCodeBadRequest))
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("SOMETHING_ELSE"))
}
