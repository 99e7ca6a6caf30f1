//go:build tinygo || !cgo

package shaderaux

import (
	"errors"

	"github.com/soypat/shaderz"
)

func ui(p *shaderz.Project, cfg UIConfig) error {
	return errors.New("require cgo for UI rendering")
}
