// Package contract exposes the published OpenAPI contract of the order intake
// endpoint. The document is embedded so clients resolve the method and path
// of createOrder without a network round trip; kin-openapi stays behind
// internal/contract.
package contract

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"sync"

	internalcontract "github.com/goliatone/go-orderform/internal/contract"
)

// CreateOrder is the operation id used to place an order.
const CreateOrder = "createOrder"

// ErrOperationNotFound is returned when the contract lacks an operation.
var ErrOperationNotFound = errors.New("contract: operation not found")

//go:embed openapi.yaml
var embedded []byte

// Operation is a parsed contract operation.
type Operation = internalcontract.Operation

// Schema is a flattened request or response body schema.
type Schema = internalcontract.Schema

// Endpoint is the HTTP method and path of an operation.
type Endpoint struct {
	OperationID string
	Method      string
	Path        string
}

// Contract is a parsed OpenAPI document.
type Contract struct {
	operations map[string]Operation
}

var (
	defaultOnce     sync.Once
	defaultContract *Contract
	defaultErr      error
)

// Default returns the embedded contract, parsed once per process.
func Default() (*Contract, error) {
	defaultOnce.Do(func() {
		defaultContract, defaultErr = Parse(context.Background(), embedded)
	})
	return defaultContract, defaultErr
}

// Raw returns a copy of the embedded document.
func Raw() []byte {
	return append([]byte(nil), embedded...)
}

// Parse builds a Contract from a raw OpenAPI document.
func Parse(ctx context.Context, raw []byte) (*Contract, error) {
	ops, err := internalcontract.Parse(ctx, raw)
	if err != nil {
		return nil, err
	}
	return &Contract{operations: ops}, nil
}

// Operation returns the operation registered under id.
func (c *Contract) Operation(id string) (Operation, error) {
	if c == nil {
		return Operation{}, fmt.Errorf("%w: %s", ErrOperationNotFound, id)
	}
	op, ok := c.operations[id]
	if !ok {
		return Operation{}, fmt.Errorf("%w: %s", ErrOperationNotFound, id)
	}
	return op, nil
}

// Endpoint resolves the method and path of an operation.
func (c *Contract) Endpoint(id string) (Endpoint, error) {
	op, err := c.Operation(id)
	if err != nil {
		return Endpoint{}, err
	}
	return Endpoint{OperationID: op.ID, Method: op.Method, Path: op.Path}, nil
}

// OperationIDs lists the operations in the contract, sorted.
func (c *Contract) OperationIDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.operations))
	for id := range c.operations {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// RequestProperty returns the request body property schema of an operation.
func (c *Contract) RequestProperty(opID, name string) (Schema, bool) {
	op, err := c.Operation(opID)
	if err != nil {
		return Schema{}, false
	}
	prop, ok := op.RequestBody.Properties[name]
	return prop, ok
}

// EnumStrings returns the enum values of a schema rendered as strings.
func EnumStrings(s Schema) []string {
	if len(s.Enum) == 0 {
		return nil
	}
	out := make([]string, 0, len(s.Enum))
	for _, v := range s.Enum {
		out = append(out, fmt.Sprint(v))
	}
	return out
}
