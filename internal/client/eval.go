package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/monasticus/mlclient/internal/constants"
	"github.com/monasticus/mlclient/internal/http"
	"github.com/monasticus/mlclient/pkg/ml"
)

// EvalClient implements ml.EvalClient.
type EvalClient struct {
	httpClient *http.Client
}

// NewEvalClient creates a new eval client.
func NewEvalClient(httpClient *http.Client) *EvalClient {
	return &EvalClient{
		httpClient: httpClient,
	}
}

// Eval implements ml.EvalClient.Eval.
func (c *EvalClient) Eval(ctx context.Context, request *ml.EvalRequest) (*ml.Result, error) {
	form, err := evalForm(request)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(ctx, &http.Request{
		Method:      "POST",
		Path:        constants.APIPathEval,
		RawBody:     []byte(form.Encode()),
		ContentType: constants.MediaTypeForm,
		Headers: map[string]string{
			constants.HeaderAccept: constants.MediaTypeMultipartMixed,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("evaluating code: %w", err)
	}

	var result *ml.Result
	if request.WithHeaders {
		result, err = ml.ParseResponseWithHeaders(resp, request.Output)
	} else {
		result, err = ml.ParseResponse(resp, request.Output)
	}

	if err != nil {
		return nil, fmt.Errorf("parsing eval result: %w", err)
	}

	return result, nil
}

func evalForm(request *ml.EvalRequest) (url.Values, error) {
	if request == nil || (request.XQuery == "") == (request.JavaScript == "") {
		return nil, fmt.Errorf("%w: set exactly one of xquery or javascript", ml.ErrCodeRequired)
	}

	form := url.Values{}

	if request.XQuery != "" {
		form.Set("xquery", request.XQuery)
	} else {
		form.Set("javascript", request.JavaScript)
	}

	if len(request.Variables) > 0 {
		vars, err := json.Marshal(request.Variables)
		if err != nil {
			return nil, fmt.Errorf("marshaling eval variables: %w", err)
		}

		form.Set("vars", string(vars))
	}

	if request.Database != "" {
		form.Set("database", request.Database)
	}

	return form, nil
}
