package utils_test

import (
	"encoding/base64"
	"testing"

	"foodgram-api/internal/utils"

	"github.com/stretchr/testify/require"
)

func TestDecodeBase64Image(t *testing.T) {
	payload := []byte{0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a}
	encoded := base64.StdEncoding.EncodeToString(payload)

	testCases := []struct {
		name        string
		data        string
		wantErr     error
		wantName    string
		wantType    string
		wantContent []byte
	}{
		{
			name:        "PNGDataURI",
			data:        "data:image/png;base64," + encoded,
			wantName:    "photo.png",
			wantType:    "image/png",
			wantContent: payload,
		},
		{
			name:        "JPEGDataURI",
			data:        "data:image/jpeg;base64," + encoded,
			wantName:    "photo.jpeg",
			wantType:    "image/jpeg",
			wantContent: payload,
		},
		{
			name:    "NotADataURI",
			data:    "https://example.com/photo.png",
			wantErr: utils.ErrNotDataURI,
		},
		{
			name:    "MissingBase64Marker",
			data:    "data:image/png," + encoded,
			wantErr: utils.ErrNotDataURI,
		},
		{
			name:    "EmptyPayload",
			data:    "data:image/png;base64,",
			wantErr: utils.ErrNotDataURI,
		},
		{
			name:    "MalformedPayload",
			data:    "data:image/png;base64,%%%not-base64%%%",
			wantErr: utils.ErrBadImageBase64,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			image, err := utils.DecodeBase64Image(tc.data)
			if tc.wantErr != nil {
				require.ErrorIs(t, err, tc.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tc.wantName, image.Name)
			require.Equal(t, tc.wantType, image.ContentType)
			require.Equal(t, tc.wantContent, image.Content)
		})
	}
}
