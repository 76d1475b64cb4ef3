package util

import (
	"bytes"
	"errors"
	"estudiapro_backend/internal/model"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{ErrAlreadyEnrolled, http.StatusBadRequest},
		{ErrSurveyClosed, http.StatusBadRequest},
		{Validationf("bad %s", "field"), http.StatusBadRequest},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrActivityReadOnly, http.StatusForbidden},
		{ErrCourseNotFound, http.StatusNotFound},
		{fmt.Errorf("load: %w", gorm.ErrRecordNotFound), http.StatusNotFound},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, StatusFor(tc.err), tc.err.Error())
	}
}

func TestHandleErrorWritesEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleError(c, ErrAlreadyEnrolled)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "already enrolled")
	assert.Contains(t, w.Body.String(), `"code":400`)
}

func TestJWTRoundTripCarriesTokenID(t *testing.T) {
	user := &model.User{Email: "ana@example.com", Role: model.Student}
	user.ID = 42

	token, claims, err := GenerateJWT(user, "secret", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, claims.ID)

	parsed, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), parsed.UserID)
	assert.Equal(t, model.Student, parsed.Role)
	assert.Equal(t, claims.ID, parsed.ID)

	_, err = ParseJWT(token, "other")
	assert.Error(t, err)
}

func TestJWTExpired(t *testing.T) {
	user := &model.User{Role: model.Admin}
	token, _, err := GenerateJWT(user, "secret", -time.Minute)
	require.NoError(t, err)
	_, err = ParseJWT(token, "secret")
	assert.Error(t, err)
}

func TestValidateMimeType(t *testing.T) {
	pdf := bytes.NewBufferString("%PDF-1.4 sample")
	mime, err := ValidateMimeType(pdf, []string{MimePDF})
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", mime)

	_, err = ValidateMimeType(bytes.NewBufferString("plain text"), []string{MimePDF})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 4.5, Round2(4.5))
	assert.Equal(t, 66.67, Round2(200.0/3))
	assert.Equal(t, 33.33, Round2(100.0/3))
}

func TestParseVideoInfo(t *testing.T) {
	out := `{"streams":[{"codec_type":"audio"},{"codec_type":"video","width":1280,"height":720}],
	"format":{"duration":"125.4","size":"2048","format_name":"mov,mp4,m4a"}}`
	info, err := parseVideoInfo(out, 1)
	require.NoError(t, err)
	assert.Equal(t, 1280, info.Width)
	assert.Equal(t, "mov", info.Format)
	assert.Equal(t, int64(2048), info.Size)
	assert.Equal(t, 3, info.DurationMinutes())
}

func TestObjectKeyKeepsExtension(t *testing.T) {
	key := ObjectKey("community", "Apuntes.PDF")
	assert.Contains(t, key, "community/")
	assert.True(t, len(key) > len("community/"))
	assert.Equal(t, ".pdf", key[len(key)-4:])
	assert.True(t, IsVideoFile("clase.MP4"))
	assert.False(t, IsVideoFile("clase.txt"))
}
