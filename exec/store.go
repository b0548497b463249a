package exec

import "github.com/wasmvm-go/wasmvm/wasm"

// Store is the instantiated image of a single decoded module: its flat
// function index space (imports first, then locals), its linear memory
// (if any), and its export name index. It is built once, by Instantiate;
// afterwards its function table and export index are not modified, while
// its linear memory is written by I32Store, host callbacks and fd_write.
type Store struct {
	Functions []Function
	Memory    *Memory
	exports   map[string]uint32
}

// Instantiate builds a Store from a decoded module, per spec §4.3's five
// build steps: resolve the function index space, allocate memory, apply
// data segments, and index exports.
func Instantiate(m *wasm.Module) (*Store, error) {
	s := &Store{exports: map[string]uint32{}}

	// Step 1: imports occupy the low end of the function index space.
	for _, imp := range m.Imports {
		if int(imp.TypeIndex) >= len(m.Types) {
			return nil, errMissingTypeIndex(imp.TypeIndex)
		}
		s.Functions = append(s.Functions, &ExternalFunction{
			ModuleName: imp.Module,
			FieldName:  imp.Field,
			Sig:        m.Types[imp.TypeIndex],
		})
	}

	// Step 2: local functions follow, paired body-by-body with their
	// Function-section type index.
	for i, body := range m.Code {
		if i >= len(m.FuncTypes) {
			return nil, errMissingTypeIndex(0)
		}
		typeIdx := m.FuncTypes[i]
		if int(typeIdx) >= len(m.Types) {
			return nil, errMissingTypeIndex(typeIdx)
		}
		s.Functions = append(s.Functions, &InternalFunction{
			Sig:    m.Types[typeIdx],
			Locals: body.ExpandedLocals(),
			Code:   body.Code,
		})
	}

	// Step 3: allocate linear memory, if declared.
	if m.Memory != nil {
		s.Memory = NewMemory(m.Memory.Min, m.Memory.Max, m.Memory.HasMax)
	}

	// Step 4: apply data segments.
	for i, seg := range m.Data {
		if s.Memory == nil {
			return nil, errMissingMemoryForDataSegment(i)
		}
		start := seg.Offset
		end := int64(start) + int64(len(seg.Init))
		if start < 0 || end > int64(s.Memory.Len()) {
			return nil, errDataSegmentOutOfBounds(i)
		}
		s.Memory.WriteAt(uint32(start), seg.Init)
	}

	// Step 5: index exports by name.
	for _, exp := range m.Exports {
		s.exports[exp.Name] = exp.FuncIndex
	}

	return s, nil
}

// ExportedFuncIndex looks up an export's function-index-space index by
// name.
func (s *Store) ExportedFuncIndex(name string) (uint32, bool) {
	idx, ok := s.exports[name]
	return idx, ok
}

// Function returns the function instance at the given flat index.
func (s *Store) Function(idx uint32) (Function, bool) {
	if int(idx) >= len(s.Functions) {
		return nil, false
	}
	return s.Functions[idx], true
}
