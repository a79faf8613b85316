package config

import (
	"reflect"

	"github.com/aretw0/cascade/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

var (
	nuclideType  = reflect.TypeOf(domain.Nuclide{})
	nuclidesType = reflect.TypeOf([]domain.Nuclide{})
)

// NuclideHook decodes "Ni-58" strings into domain.Nuclide and "H-1, Li-7"
// strings into []domain.Nuclide.
func NuclideHook() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}
		raw := reflect.ValueOf(data).String()
		switch to {
		case nuclideType:
			return domain.ParseNuclide(raw)
		case nuclidesType:
			return domain.ParseNuclides(raw)
		}
		return data, nil
	}
}
