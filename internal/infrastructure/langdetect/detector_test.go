package langdetect

import (
	"testing"

	"github.com/everytoolsapi/backend/internal/domain/tool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetector_Detect(t *testing.T) {
	d := NewDetector()

	tests := []struct {
		text string
		code string
		name string
	}{
		{"The quick brown fox jumps over the lazy dog while the children watch from the garden.", "en", "English"},
		{"Eu gosto muito de programar em várias linguagens diferentes todos os dias da semana.", "pt", "Portuguese"},
		{"Привет, как у тебя дела? Я надеюсь, что у тебя все хорошо сегодня.", "ru", "Russian"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			res, err := d.Detect(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.code, res.Code)
			assert.Equal(t, tt.name, res.Name)
		})
	}

	t.Run("no letters", func(t *testing.T) {
		_, err := d.Detect("1234 5678 !!")
		assert.ErrorIs(t, err, tool.ErrUndetectedLanguage)
	})

	t.Run("blank", func(t *testing.T) {
		_, err := d.Detect("   ")
		assert.ErrorIs(t, err, tool.ErrUndetectedLanguage)
	})
}
