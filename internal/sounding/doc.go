// Package sounding turns an environmental temperature/humidity profile into
// the wet-bulb 0 °C and -25 °C heights that bound the HSDA altitude bands, and
// reuses them across the volumes of a station within a processing window.
package sounding
