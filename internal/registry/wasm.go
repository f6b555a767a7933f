package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// wasmHandlers adapts a compiled WASM module to the Handlers interface,
// for offerings that ship a handler.wasm instead of registering a
// native Go implementation. The calling convention mirrors the
// teacher's WasmRuntime.ExecuteComputeFunc: instantiate, look up an
// exported function by name, call it, read the result.
//
// Guest ABI: the module exports "memory", an "alloc(size uint32) ->
// uint32" function for the host to place its JSON input in guest
// memory, and one function per capability taking (inputPtr, inputLen
// uint32) and returning a single uint64 packing the output location as
// (outPtr<<32 | outLen) into the same memory. Capabilities the module
// does not export are treated as "not implemented".
type wasmHandlers struct {
	BaseHandlers
	wasmPath string
}

// newWasmHandlers instantiates the module once to confirm it exposes
// execute_job, then closes that instance; callGuestFunc instantiates
// fresh on every call.
func newWasmHandlers(ctx context.Context, wasmPath string) (*wasmHandlers, error) {
	wasmBytes, err := os.ReadFile(wasmPath)
	if err != nil {
		return nil, fmt.Errorf("read wasm module: %w", err)
	}

	runtime := wazero.NewRuntime(ctx)
	defer runtime.Close(ctx)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		return nil, fmt.Errorf("instantiate wasi: %w", err)
	}

	mod, err := runtime.Instantiate(ctx, wasmBytes)
	if err != nil {
		return nil, fmt.Errorf("instantiate module: %w", err)
	}
	defer mod.Close(ctx)

	if mod.ExportedFunction("execute_job") == nil {
		return nil, fmt.Errorf("%w: module does not export execute_job", ErrHandlerMissing)
	}

	return &wasmHandlers{wasmPath: wasmPath}, nil
}

type wasmInput struct {
	Requirements map[string]interface{} `json:"requirements"`
	JobID        int64                  `json:"jobId"`
	OfferingName string                 `json:"offeringName"`
	JobDir       string                 `json:"jobDir"`
}

// callGuestFunc instantiates the module fresh (the registry does not
// cache instances between calls) and invokes exportName with input
// marshaled as JSON, returning the guest's JSON response bytes.
func (h *wasmHandlers) callGuestFunc(ctx context.Context, exportName string, input wasmInput) ([]byte, bool, error) {
	wasmBytes, err := os.ReadFile(h.wasmPath)
	if err != nil {
		return nil, false, fmt.Errorf("read wasm module: %w", err)
	}

	runtime := wazero.NewRuntime(ctx)
	defer runtime.Close(ctx)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		return nil, false, fmt.Errorf("instantiate wasi: %w", err)
	}

	mod, err := runtime.Instantiate(ctx, wasmBytes)
	if err != nil {
		return nil, false, fmt.Errorf("instantiate module: %w", err)
	}
	defer mod.Close(ctx)

	fn := mod.ExportedFunction(exportName)
	if fn == nil {
		return nil, false, nil
	}
	alloc := mod.ExportedFunction("alloc")
	if alloc == nil {
		return nil, false, fmt.Errorf("module does not export alloc")
	}
	mem := mod.Memory()
	if mem == nil {
		return nil, false, fmt.Errorf("module does not export memory")
	}

	payload, err := json.Marshal(input)
	if err != nil {
		return nil, false, fmt.Errorf("marshal input: %w", err)
	}

	allocRes, err := alloc.Call(ctx, uint64(len(payload)))
	if err != nil {
		return nil, false, fmt.Errorf("alloc call: %w", err)
	}
	inPtr := uint32(allocRes[0])
	if !mem.Write(inPtr, payload) {
		return nil, false, fmt.Errorf("write input to guest memory out of range")
	}

	res, err := fn.Call(ctx, uint64(inPtr), uint64(len(payload)))
	if err != nil {
		return nil, false, fmt.Errorf("call %s: %w", exportName, err)
	}
	if len(res) != 1 {
		return nil, false, fmt.Errorf("%s returned %d values, want 1", exportName, len(res))
	}

	packed := res[0]
	outPtr := uint32(packed >> 32)
	outLen := uint32(packed)

	out, ok := mem.Read(outPtr, outLen)
	if !ok {
		return nil, false, fmt.Errorf("read output from guest memory out of range")
	}
	// Copy out of guest memory before the module closes.
	result := make([]byte, len(out))
	copy(result, out)
	return result, true, nil
}

func (h *wasmHandlers) ExecuteJob(ctx context.Context, requirements map[string]interface{}, jc JobContext) (ExecuteJobResult, error) {
	out, ok, err := h.callGuestFunc(ctx, "execute_job", wasmInput{
		Requirements: requirements,
		JobID:        jc.JobID,
		OfferingName: jc.OfferingName,
		JobDir:       jc.JobDir,
	})
	if err != nil {
		return ExecuteJobResult{}, err
	}
	if !ok {
		return ExecuteJobResult{}, fmt.Errorf("%w: module does not export execute_job", ErrHandlerMissing)
	}

	var result struct {
		Deliverable   interface{}    `json:"deliverable"`
		PayableDetail *PayableDetail `json:"payableDetail"`
	}
	if err := json.Unmarshal(out, &result); err != nil {
		return ExecuteJobResult{}, fmt.Errorf("parse execute_job output: %w", err)
	}

	return ExecuteJobResult{Deliverable: result.Deliverable, PayableDetail: result.PayableDetail}, nil
}

func (h *wasmHandlers) ValidateRequirements(ctx context.Context, requirements map[string]interface{}, jc JobContext) (bool, string, bool) {
	out, ok, err := h.callGuestFunc(ctx, "validate_requirements", wasmInput{Requirements: requirements, JobID: jc.JobID, OfferingName: jc.OfferingName, JobDir: jc.JobDir})
	if err != nil || !ok {
		return false, "", false
	}
	var result struct {
		Valid  bool   `json:"valid"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal(out, &result); err != nil {
		return false, "", false
	}
	return result.Valid, result.Reason, true
}

func (h *wasmHandlers) RequestPayment(ctx context.Context, requirements map[string]interface{}, jc JobContext) (string, bool) {
	out, ok, err := h.callGuestFunc(ctx, "request_payment", wasmInput{Requirements: requirements, JobID: jc.JobID, OfferingName: jc.OfferingName, JobDir: jc.JobDir})
	if err != nil || !ok {
		return "", false
	}
	var result struct {
		Content string `json:"content"`
	}
	if err := json.Unmarshal(out, &result); err != nil {
		return "", false
	}
	return result.Content, true
}

func (h *wasmHandlers) RequestAdditionalFunds(ctx context.Context, requirements map[string]interface{}, jc JobContext) (FundsRequest, bool) {
	out, ok, err := h.callGuestFunc(ctx, "request_additional_funds", wasmInput{Requirements: requirements, JobID: jc.JobID, OfferingName: jc.OfferingName, JobDir: jc.JobDir})
	if err != nil || !ok {
		return FundsRequest{}, false
	}
	var result struct {
		Amount       float64 `json:"amount"`
		TokenAddress string  `json:"tokenAddress"`
		Recipient    string  `json:"recipient"`
		Content      string  `json:"content"`
		HasContent   bool    `json:"hasContent"`
	}
	if err := json.Unmarshal(out, &result); err != nil {
		return FundsRequest{}, false
	}
	return FundsRequest{
		Amount:       result.Amount,
		TokenAddress: result.TokenAddress,
		Recipient:    result.Recipient,
		Content:      result.Content,
		HasContent:   result.HasContent,
	}, true
}
