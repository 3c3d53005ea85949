package models

import "strings"

var carrierLogos = map[string]string{
	"coordinadora_co":    "/carrier/coordinadora_co.svg",
	"interrapidisimo_co": "/carrier/interrapidisimo_co.svg",
	"servientrega_co":    "/carrier/servientrega_co.svg",
}

// CarrierLogo returns the logo path for a courier code, case-insensitive.
func CarrierLogo(courier string) (string, bool) {
	p, ok := carrierLogos[strings.ToLower(courier)]
	return p, ok
}
