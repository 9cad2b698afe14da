package points

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"

	"collection-points/internal/models"
)

// Form field names of POST /points.
const (
	FieldName      = "name"
	FieldEmail     = "email"
	FieldWhatsapp  = "whatsapp"
	FieldUF        = "uf"
	FieldCity      = "city"
	FieldLatitude  = "latitude"
	FieldLongitude = "longitude"
	FieldItems     = "items"
	FieldImage     = "image"
)

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// EncodeMultipart writes req as multipart/form-data and returns the content
// type, boundary included. Coordinates use the shortest decimal form that
// round-trips.
func EncodeMultipart(w io.Writer, req *models.CreationRequest) (string, error) {
	mw := multipart.NewWriter(w)

	fields := []struct{ name, value string }{
		{FieldName, req.Profile.Name},
		{FieldEmail, req.Profile.Email},
		{FieldWhatsapp, req.Profile.Phone},
		{FieldUF, req.Region.StateCode},
		{FieldCity, req.Region.CityName},
		{FieldLatitude, strconv.FormatFloat(req.Coordinate.Latitude, 'f', -1, 64)},
		{FieldLongitude, strconv.FormatFloat(req.Coordinate.Longitude, 'f', -1, 64)},
		{FieldItems, req.ItemsField()},
	}
	for _, f := range fields {
		if err := mw.WriteField(f.name, f.value); err != nil {
			return "", fmt.Errorf("failed to write field %s: %w", f.name, err)
		}
	}

	if req.Image != nil {
		if err := writeImage(mw, req.Image); err != nil {
			return "", err
		}
	}

	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart body: %w", err)
	}
	return mw.FormDataContentType(), nil
}

func writeImage(mw *multipart.Writer, image *models.ImageAsset) error {
	filename := image.Filename
	if filename == "" {
		filename = "image"
	}
	contentType := image.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		FieldImage, quoteEscaper.Replace(filename)))
	h.Set("Content-Type", contentType)

	part, err := mw.CreatePart(h)
	if err != nil {
		return fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := part.Write(image.Data); err != nil {
		return fmt.Errorf("failed to write image part: %w", err)
	}
	return nil
}
