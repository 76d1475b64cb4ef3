package util

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type scheduleRequest struct {
	Date string `json:"date" binding:"required,isodate"`
	Time string `json:"time" binding:"omitempty,hhmm"`
}

func bind(body string) error {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	var req scheduleRequest
	return c.ShouldBindJSON(&req)
}

func TestCustomValidators(t *testing.T) {
	RegisterValidators()

	assert.NoError(t, bind(`{"date":"2026-11-03","time":"09:30"}`))
	assert.NoError(t, bind(`{"date":"2026-11-03"}`))

	err := bind(`{"date":"03/11/2026"}`)
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "date")
	}
	assert.Error(t, bind(`{"date":"2026-11-03","time":"9:30pm"}`))
}

func TestValidHour(t *testing.T) {
	assert.True(t, ValidHour("23:59"))
	assert.False(t, ValidHour("24:00"))
	assert.False(t, ValidHour("9:30"))
}
