package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/adrianliechti/docagent/pkg/document"
	"github.com/adrianliechti/docagent/server/api"

	"github.com/google/uuid"
)

var ErrNoResult = errors.New("no result")

type Record = document.Record

type AnalysisService struct {
	Options []RequestOption
}

func NewAnalysisService(opts ...RequestOption) AnalysisService {
	return AnalysisService{
		Options: opts,
	}
}

type AnalysisRequest struct {
	Name   string
	Reader io.Reader

	MaxPages *int
}

func (r *AnalysisService) New(ctx context.Context, input AnalysisRequest, opts ...RequestOption) (*Record, error) {
	c := newRequestConfig(append(r.Options, opts...)...)

	var data bytes.Buffer
	w := multipart.NewWriter(&data)

	file, err := w.CreateFormFile("file", input.Name)

	if err != nil {
		return nil, err
	}

	if _, err := io.Copy(file, input.Reader); err != nil {
		return nil, err
	}

	if input.MaxPages != nil {
		w.WriteField("max_pages", fmt.Sprintf("%d", *input.MaxPages))
	}

	w.Close()

	req, _ := http.NewRequestWithContext(ctx, "POST", c.URL+"/agent/analyze-file", &data)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("X-Request-Id", uuid.NewString())

	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.Client.Do(req)

	if err != nil {
		return nil, err
	}

	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnprocessableEntity {
		return nil, ErrNoResult
	}

	if resp.StatusCode != http.StatusOK {
		return nil, readError(resp)
	}

	var result Record

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}

	return &result, nil
}

func readError(resp *http.Response) error {
	var result api.ErrorResponse

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil || result.Error == "" {
		return errors.New(resp.Status)
	}

	return fmt.Errorf("%s: %s", resp.Status, result.Error)
}
