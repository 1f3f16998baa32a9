package bmi

const (
	VarGridLongitude = "grid_longitude"
	VarGridLatitude  = "grid_latitude"
	VarHeight        = "height_above_sea_floor"

	GridUniform = "uniform"
	GridUnknown = "unknown"

	componentName = "Example C model"
	timeUnits     = "s"
)

// VarInfo is one row of the static variable table.
type VarInfo struct {
	Name   string
	Type   string
	Units  string
	Rank   int
	Input  bool
	Output bool

	// HasGrid marks the variable backed by the model field.
	HasGrid bool
}

type varTable struct {
	order  []string
	byName map[string]VarInfo
}

// variables is built once and only read afterwards.
var variables = newVarTable(
	VarInfo{Name: VarGridLongitude, Type: "double", Units: "arc_degree", Rank: 2, Output: true},
	VarInfo{Name: VarGridLatitude, Type: "double", Units: "arc_degree", Rank: 2},
	VarInfo{Name: VarHeight, Type: "double", Units: "meter", Rank: 2, Input: true, Output: true, HasGrid: true},
)

func newVarTable(infos ...VarInfo) varTable {
	t := varTable{
		order:  make([]string, 0, len(infos)),
		byName: make(map[string]VarInfo, len(infos)),
	}
	for _, info := range infos {
		t.order = append(t.order, info.Name)
		t.byName[info.Name] = info
	}
	return t
}

func (t varTable) lookup(op, name string) (VarInfo, error) {
	info, ok := t.byName[name]
	if !ok {
		return VarInfo{}, &VarError{Name: name, Op: op, Wrapped: ErrUnknownVariable}
	}
	return info, nil
}

func (t varTable) names(keep func(VarInfo) bool) []string {
	out := make([]string, 0, len(t.order))
	for _, name := range t.order {
		if keep(t.byName[name]) {
			out = append(out, name)
		}
	}
	return out
}

// Variables returns the whole table in declaration order.
func Variables() []VarInfo {
	out := make([]VarInfo, 0, len(variables.order))
	for _, name := range variables.order {
		out = append(out, variables.byName[name])
	}
	return out
}

// Lookup returns the metadata for name.
func Lookup(name string) (VarInfo, bool) {
	info, ok := variables.byName[name]
	return info, ok
}
