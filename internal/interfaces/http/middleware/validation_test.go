package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/afyapos/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stkPushForm struct {
	SaleID      string `json:"sale_id" binding:"required,uuid"`
	PhoneNumber string `json:"phone_number" binding:"required,msisdn"`
}

func bindJSONBody(t *testing.T, body string, obj any) (*gin.Context, error) {
	t.Helper()

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(body)))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, c.ShouldBindJSON(obj)
}

func TestSetupValidatorMsisdnTag(t *testing.T) {
	SetupValidator()

	tests := []struct {
		name  string
		phone string
		valid bool
	}{
		{"safaricom mobile", "254712345678", true},
		{"airtel style 1xx range", "254110123456", true},
		{"local format not accepted", "0712345678", false},
		{"plus prefix not accepted", "+254712345678", false},
		{"landline range rejected", "254201234567", false},
		{"too short", "25471234567", false},
		{"too long", "2547123456789", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, _ := json.Marshal(map[string]string{
				"sale_id":      "0c40e5c1-9d2f-4f3a-9a94-2f8f17d8b001",
				"phone_number": tt.phone,
			})

			var form stkPushForm
			_, err := bindJSONBody(t, string(body), &form)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSetupValidatorSortFieldTag(t *testing.T) {
	SetupValidator()
	gin.SetMode(gin.TestMode)

	bindQuery := func(t *testing.T, rawQuery string) error {
		t.Helper()
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
		var req dto.ListRequest
		return c.ShouldBindQuery(&req)
	}

	tests := []struct {
		name  string
		query string
		valid bool
	}{
		{"column name accepted", "order_by=created_at", true},
		{"empty accepted", "order_by=", true},
		{"mixed case accepted", "order_by=expiryDate", true},
		{"subquery rejected", "order_by=(SELECT%20pg_sleep(10))--", false},
		// Semicolons are URL-encoded: ParseQuery drops raw-semicolon pairs
		// before binding ever sees them
		{"statement separator rejected", "order_by=quantity%3BDROP%20TABLE%20sales", false},
		{"leading digit rejected", "order_by=1quantity", false},
		{"quote rejected", "order_by=quantity'", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := bindQuery(t, tt.query)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFormatValidationErrorsUsesJSONFieldNames(t *testing.T) {
	SetupValidator()

	var form stkPushForm
	_, err := bindJSONBody(t, `{"sale_id":"not-a-uuid"}`, &form)
	require.Error(t, err)

	resp := FormatValidationErrors(err, "req-123")

	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-123", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 2)

	fields := map[string]string{}
	for _, d := range resp.Error.Details {
		fields[d.Field] = d.Message
	}
	assert.Contains(t, fields, "sale_id")
	assert.Contains(t, fields, "phone_number")
	assert.Equal(t, "This field is required", fields["phone_number"])
}

func TestHandleValidationErrorWrites400(t *testing.T) {
	SetupValidator()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte(`{}`)))
	c.Request.Header.Set("Content-Type", "application/json")
	c.Set("request_id", "req-456")

	var form stkPushForm
	err := c.ShouldBindJSON(&form)
	require.Error(t, err)

	HandleValidationError(c, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "req-456", resp.Error.RequestID)
	assert.NotEmpty(t, resp.Error.Details)
}
