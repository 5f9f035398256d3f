package api

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeOrderPage normalizes an order-list body. The offset-paginated
// {content, totalElements} shape wins; the legacy {orders, total|totalElements}
// shape is the fallback. A body with neither array is ErrUnrecognizedEnvelope.
func DecodeOrderPage(body []byte) (OrderPage, error) {
	data, err := unwrapBody(body)
	if err != nil {
		return OrderPage{}, err
	}
	if err := checkStatus(data); err != nil {
		return OrderPage{}, err
	}

	var env orderPageEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return OrderPage{}, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	switch {
	case present(env.Content):
		orders, err := decodeOrders(env.Content)
		if err != nil {
			return OrderPage{}, err
		}
		return OrderPage{
			Orders:   orders,
			Total:    firstCount(env.TotalElements, env.Total),
			Envelope: EnvelopeContent,
		}, nil
	case present(env.Orders):
		orders, err := decodeOrders(env.Orders)
		if err != nil {
			return OrderPage{}, err
		}
		return OrderPage{
			Orders:   orders,
			Total:    firstCount(env.Total, env.TotalElements),
			Envelope: EnvelopeLegacy,
		}, nil
	default:
		return OrderPage{}, ErrUnrecognizedEnvelope
	}
}

func decodeOrders(raw json.RawMessage) ([]Order, error) {
	var orders []Order
	if err := json.Unmarshal(raw, &orders); err != nil {
		return nil, fmt.Errorf("%w: order list: %v", ErrMalformedBody, err)
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func firstCount(counts ...*int64) int64 {
	for _, c := range counts {
		if c != nil {
			return *c
		}
	}
	return 0
}

// unwrapBody undoes one level of string-wrapped JSON, which some proxies
// produce when they re-serialize a body as text.
func unwrapBody(body []byte) ([]byte, error) {
	data := bytes.TrimSpace(body)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedBody)
	}
	if data[0] != '"' {
		return data, nil
	}
	var inner string
	if err := json.Unmarshal(data, &inner); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	data = bytes.TrimSpace([]byte(inner))
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedBody)
	}
	return data, nil
}

// checkStatus turns an explicit success:false into a *FailureError.
func checkStatus(data []byte) error {
	if len(data) == 0 || data[0] != '{' {
		return nil
	}
	var status statusEnvelope
	if err := json.Unmarshal(data, &status); err != nil {
		return nil
	}
	if status.Success != nil && !*status.Success {
		msg := status.Message
		if msg == "" {
			msg = status.Error
		}
		return &FailureError{Message: msg}
	}
	return nil
}

func decodeEnvelope(body []byte, out any) error {
	data, err := unwrapBody(body)
	if err != nil {
		return err
	}
	if err := checkStatus(data); err != nil {
		return err
	}
	return decodeInto(data, out)
}

func decodeInto(data []byte, out any) error {
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return nil
}
