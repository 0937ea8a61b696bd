package shape

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/cwbudde/algo-rf/rf/core"
	"github.com/cwbudde/algo-rf/rf/tensor"
)

func zeros(shape ...int) *tensor.Array {
	return tensor.Must(tensor.New(shape...))
}

func TestValidateConsistent(t *testing.T) {
	tests := []struct {
		name string
		set  Set
		k    int
		want Dims
	}{
		{
			name: "activity and stimulus",
			set:  Set{Activity: zeros(100, 2), Stimulus: zeros(100, 8)},
			k:    5,
			want: Dims{T: 100, N: 2, K: 5, Spatial: []int{8}},
		},
		{
			name: "all four",
			set: Set{
				Activity:       zeros(50, 3),
				Stimulus:       zeros(50, 4, 6),
				ReceptiveField: zeros(7, 3, 4, 6),
				Decoder:        zeros(7, 3, 4, 6),
			},
			k:    7,
			want: Dims{T: 50, N: 3, K: 7, Spatial: []int{4, 6}},
		},
		{
			name: "stimulus and receptive field",
			set:  Set{Stimulus: zeros(10, 1), ReceptiveField: zeros(1, 1, 1)},
			k:    1,
			want: Dims{T: 10, N: 1, K: 1, Spatial: []int{1}},
		},
		{
			name: "activity only without kernel",
			set:  Set{Activity: zeros(4, 1)},
			k:    0,
			want: Dims{T: 4, N: 1},
		},
		{
			name: "T equals K",
			set:  Set{Activity: zeros(5, 1), Stimulus: zeros(5, 2)},
			k:    5,
			want: Dims{T: 5, N: 1, K: 5, Spatial: []int{2}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.set, tt.k)
			if err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if got.T != tt.want.T || got.N != tt.want.N || got.K != tt.want.K || !slices.Equal(got.Spatial, tt.want.Spatial) {
				t.Fatalf("dims = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValidateMismatch(t *testing.T) {
	tests := []struct {
		name   string
		set    Set
		k      int
		first  string
		second string
		dim    string
	}{
		{
			name:   "time",
			set:    Set{Activity: zeros(50, 2), Stimulus: zeros(100, 8)},
			k:      5,
			first:  NameStimulus,
			second: NameActivity,
			dim:    DimTime,
		},
		{
			name:   "neurons",
			set:    Set{Activity: zeros(100, 2), ReceptiveField: zeros(5, 3, 8)},
			k:      5,
			first:  NameReceptiveField,
			second: NameActivity,
			dim:    DimNeuron,
		},
		{
			name:   "neurons between filters",
			set:    Set{ReceptiveField: zeros(5, 2, 8), Decoder: zeros(5, 4, 8)},
			k:      5,
			first:  NameDecoder,
			second: NameReceptiveField,
			dim:    DimNeuron,
		},
		{
			name:   "spatial size",
			set:    Set{Stimulus: zeros(100, 8), ReceptiveField: zeros(5, 2, 9)},
			k:      5,
			first:  NameReceptiveField,
			second: NameStimulus,
			dim:    DimSpatial,
		},
		{
			name:   "spatial order",
			set:    Set{Stimulus: zeros(100, 4, 6), Decoder: zeros(5, 2, 6, 4)},
			k:      5,
			first:  NameDecoder,
			second: NameStimulus,
			dim:    DimSpatial,
		},
		{
			name:   "spatial rank",
			set:    Set{Stimulus: zeros(100, 4, 6), ReceptiveField: zeros(5, 2, 24)},
			k:      5,
			first:  NameReceptiveField,
			second: NameStimulus,
			dim:    DimSpatial,
		},
		{
			name:   "kernel",
			set:    Set{Stimulus: zeros(100, 8), ReceptiveField: zeros(4, 2, 8)},
			k:      5,
			first:  NameReceptiveField,
			second: NameKernelSize,
			dim:    DimKernel,
		},
		{
			name:   "too short for kernel",
			set:    Set{Activity: zeros(4, 1), Stimulus: zeros(4, 1)},
			k:      5,
			first:  NameActivity,
			second: NameKernelSize,
			dim:    DimTime,
		},
		{
			name:  "activity rank",
			set:   Set{Activity: zeros(100), Stimulus: zeros(100, 8)},
			k:     5,
			first: NameActivity,
			dim:   DimRank,
		},
		{
			name:  "stimulus without spatial axis",
			set:   Set{Stimulus: zeros(100)},
			k:     5,
			first: NameStimulus,
			dim:   DimRank,
		},
		{
			name:  "filter without spatial axis",
			set:   Set{ReceptiveField: zeros(5, 2)},
			k:     5,
			first: NameReceptiveField,
			dim:   DimRank,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Validate(tt.set, tt.k)
			if !errors.Is(err, ErrShapeMismatch) {
				t.Fatalf("err = %v, want ErrShapeMismatch", err)
			}
			var me *MismatchError
			if !errors.As(err, &me) {
				t.Fatalf("err %T is not *MismatchError", err)
			}
			if me.First != tt.first || me.Second != tt.second || me.Dim != tt.dim {
				t.Fatalf("mismatch = {%q %q %q}, want {%q %q %q}",
					me.First, me.Second, me.Dim, tt.first, tt.second, tt.dim)
			}
			if !strings.Contains(err.Error(), tt.first) {
				t.Fatalf("message %q does not name %q", err.Error(), tt.first)
			}
			if tt.second != "" && !strings.Contains(err.Error(), tt.second) {
				t.Fatalf("message %q does not name %q", err.Error(), tt.second)
			}
		})
	}
}

func TestValidateAllTimePairs(t *testing.T) {
	for _, tt := range []struct{ ta, ts int }{{10, 11}, {11, 10}, {64, 128}} {
		_, err := Validate(Set{Activity: zeros(tt.ta, 1), Stimulus: zeros(tt.ts, 1)}, 1)
		if !errors.Is(err, ErrShapeMismatch) {
			t.Fatalf("T=(%d,%d): err = %v, want ErrShapeMismatch", tt.ta, tt.ts, err)
		}
	}
}

func TestValidateInvalidParameter(t *testing.T) {
	if _, err := Validate(Set{}, 1); !errors.Is(err, core.ErrInvalidParameter) {
		t.Fatalf("empty set err = %v, want ErrInvalidParameter", err)
	}
	if _, err := Validate(Set{ReceptiveField: zeros(1, 1, 1)}, 0); !errors.Is(err, core.ErrInvalidParameter) {
		t.Fatalf("filter without kernel size err = %v, want ErrInvalidParameter", err)
	}
	if _, err := Validate(Set{Activity: zeros(3, 1)}, -1); !errors.Is(err, core.ErrInvalidParameter) {
		t.Fatalf("negative kernel size err = %v, want ErrInvalidParameter", err)
	}
}

func TestDimsSpatialSize(t *testing.T) {
	if got := (Dims{Spatial: []int{4, 6}}).SpatialSize(); got != 24 {
		t.Fatalf("SpatialSize = %d, want 24", got)
	}
	if got := (Dims{}).SpatialSize(); got != 0 {
		t.Fatalf("SpatialSize of empty = %d, want 0", got)
	}
}
