// utils/photo_utils.go
package utils

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image/jpeg"
	"io"

	"github.com/disintegration/imaging"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	// Maximum photo size accepted per file (5MB)
	MaxPhotoSize = 5 * 1024 * 1024
	// Maximum photos per listing
	MaxPhotosPerListing = 6

	// Avatars are downscaled to this width before storage
	avatarMaxWidth = 320
)

// UploadPhoto streams a photo into GridFS under the given filename, tagged
// with the owning listing and user.
func UploadPhoto(bucket *gridfs.Bucket, photoID, listingID, userID string, data []byte) error {
	if len(data) > MaxPhotoSize {
		return fmt.Errorf("file too large. Maximum size is %d bytes", MaxPhotoSize)
	}

	uploadOpts := options.GridFSUpload().SetMetadata(bson.M{
		"listingId": listingID,
		"userId":    userID,
	})
	stream, err := bucket.OpenUploadStream(photoID, uploadOpts)
	if err != nil {
		return fmt.Errorf("failed to open upload stream: %w", err)
	}

	if _, err := stream.Write(data); err != nil {
		stream.Close()
		return fmt.Errorf("failed to write photo: %w", err)
	}
	return stream.Close()
}

// DownloadPhotoDataURI reads a photo out of GridFS and materializes it as an
// inline data URI.
func DownloadPhotoDataURI(bucket *gridfs.Bucket, photoID string) (string, error) {
	var buf bytes.Buffer
	if _, err := bucket.DownloadToStreamByName(photoID, &buf); err != nil {
		return "", fmt.Errorf("failed to download photo %s: %w", photoID, err)
	}
	return ImageDataURI(buf.Bytes()), nil
}

// ImageDataURI encodes raw image bytes as a JPEG data URI, the format the
// frontend renders directly.
func ImageDataURI(data []byte) string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(data)
}

// ReadAvatar consumes an uploaded avatar and downscales it for storage.
// Images that fail to decode are stored as-is.
func ReadAvatar(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxPhotoSize+1))
	if err != nil {
		return nil, err
	}
	if len(data) > MaxPhotoSize {
		return nil, fmt.Errorf("file too large. Maximum size is %d bytes", MaxPhotoSize)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return data, nil
	}

	if img.Bounds().Dx() > avatarMaxWidth {
		img = imaging.Resize(img, avatarMaxWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 85}); err != nil {
		return nil, fmt.Errorf("failed to encode avatar: %w", err)
	}
	return buf.Bytes(), nil
}
