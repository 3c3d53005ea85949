package models

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCarrierLogo(t *testing.T) {
	p, ok := CarrierLogo("coordinadora_co")
	require.True(t, ok)
	require.Equal(t, "/carrier/coordinadora_co.svg", p)

	p, ok = CarrierLogo("SERVIENTREGA_CO")
	require.True(t, ok)
	require.Equal(t, "/carrier/servientrega_co.svg", p)

	_, ok = CarrierLogo("fedex")
	require.False(t, ok)
}
