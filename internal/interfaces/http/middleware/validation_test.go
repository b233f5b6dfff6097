package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/landerp/backend/internal/interfaces/http/dto"
)

type plotRequest struct {
	PlotNumber string          `json:"plot_number" binding:"required,max=10"`
	AreaSqft   float64         `json:"area_sqft" binding:"gt=0"`
	Kind       string          `json:"kind" binding:"omitempty,oneof=RESIDENTIAL COMMERCIAL"`
	Price      decimal.Decimal `json:"price" binding:"required,gt=0"`
}

func TestHandleValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	SetupValidator()

	router := gin.New()
	router.Use(RequestID())
	router.POST("/plots", func(c *gin.Context) {
		var req plotRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.Status(http.StatusCreated)
	})

	tests := []struct {
		name   string
		body   string
		status int
		fields map[string]string
	}{
		{
			name:   "valid",
			body:   `{"plot_number":"A-1","area_sqft":1200,"price":"250000.50"}`,
			status: http.StatusCreated,
		},
		{
			name:   "missing and non positive",
			body:   `{"area_sqft":0}`,
			status: http.StatusBadRequest,
			fields: map[string]string{
				"plot_number": "This field is required",
				"area_sqft":   "Must be greater than 0",
				"price":       "This field is required",
			},
		},
		{
			name:   "oneof and max",
			body:   `{"plot_number":"ABCDEFGHIJKL","area_sqft":10,"kind":"FARM","price":"-5"}`,
			status: http.StatusBadRequest,
			fields: map[string]string{
				"plot_number": "Must be at most 10 characters",
				"kind":        "Must be one of: RESIDENTIAL COMMERCIAL",
				"price":       "Must be greater than 0",
			},
		},
		{
			name:   "malformed json",
			body:   `{"plot_number":`,
			status: http.StatusBadRequest,
			fields: map[string]string{"body": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/plots", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code)
			if tt.fields == nil {
				return
			}
			var resp dto.Response
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, dto.CodeValidation, resp.Error.Code)
			assert.NotEmpty(t, resp.Error.RequestID)

			got := map[string]string{}
			for _, f := range resp.Error.Fields {
				got[f.Field] = f.Message
			}
			for field, msg := range tt.fields {
				assert.Contains(t, got, field)
				if msg != "" {
					assert.Equal(t, msg, got[field])
				}
			}
		})
	}
}

func TestFieldErrors_NonValidatorError(t *testing.T) {
	assert.Nil(t, FieldErrors(assert.AnError))
}
