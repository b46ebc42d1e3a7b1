package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

// ErrUploadFailed 图床服务不可用或返回异常
var ErrUploadFailed = errors.New("image upload failed")

const imgurUploadURL = "https://api.imgur.com/3/image"

// ImgurResponse Imgur API 响应结构
type ImgurResponse struct {
	Data struct {
		ID   string `json:"id"`
		Link string `json:"link"`
		Type string `json:"type"`
	} `json:"data"`
	Success bool `json:"success"`
	Status  int  `json:"status"`
}

// ImageUploadService 封面/头像上传，托管在 Imgur
type ImageUploadService struct {
	clientID  string
	uploadURL string
	client    *http.Client
}

func NewImageUploadService(clientID string) *ImageUploadService {
	return &ImageUploadService{
		clientID:  clientID,
		uploadURL: imgurUploadURL,
		client:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Upload 上传一张图片，返回托管 URL。
// 文章创建流程里必须先上传成功再落库。
func (s *ImageUploadService) Upload(ctx context.Context, file multipart.File, header *multipart.FileHeader) (string, error) {
	if s.clientID == "" {
		return "", fmt.Errorf("%w: IMGUR_CLIENT_ID not configured", ErrUploadFailed)
	}

	fileBytes, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("%w: read file: %v", ErrUploadFailed, err)
	}

	// Imgur 接受 base64 编码的 multipart 字段
	base64Image := base64.StdEncoding.EncodeToString(fileBytes)

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)
	if err := writer.WriteField("image", base64Image); err != nil {
		return "", fmt.Errorf("%w: build request body: %v", ErrUploadFailed, err)
	}
	if err := writer.WriteField("type", "base64"); err != nil {
		return "", fmt.Errorf("%w: build request body: %v", ErrUploadFailed, err)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.uploadURL, &requestBody)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrUploadFailed, err)
	}
	req.Header.Set("Authorization", "Client-ID "+s.clientID)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", ErrUploadFailed, err)
	}

	var imgurResp ImgurResponse
	if err := json.Unmarshal(body, &imgurResp); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUploadFailed, err)
	}
	if !imgurResp.Success || imgurResp.Data.Link == "" {
		return "", fmt.Errorf("%w: upstream status %d", ErrUploadFailed, imgurResp.Status)
	}

	return imgurResp.Data.Link, nil
}
