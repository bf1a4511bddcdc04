// passbands.go - default tabulated passband samples.
//
// Real tabulated transmissivity curves (Gaia's G/BP/RP bands, a
// deployment's actual camera filters) are loaded from outside this
// package. These flat-topped placeholder tables stand in for that data
// so BuildRGBTable has something concrete to integrate against.

package main

func flatBand(loNM, hiNM float64) []PassbandSample {
	return []PassbandSample{
		{WavelengthNM: loNM, Transmissivity: 0},
		{WavelengthNM: loNM + (hiNM-loNM)*0.1, Transmissivity: 1},
		{WavelengthNM: hiNM - (hiNM-loNM)*0.1, Transmissivity: 1},
		{WavelengthNM: hiNM, Transmissivity: 0},
	}
}

// defaultCameraBands returns placeholder (R,G,B) camera filter bands.
func defaultCameraBands() [3][]PassbandSample {
	return [3][]PassbandSample{
		flatBand(590, 700), // R
		flatBand(500, 590), // G
		flatBand(400, 500), // B
	}
}

// defaultGaiaGBand returns a placeholder Gaia G-band transmissivity
// table spanning its tabulated 320-1100nm range.
func defaultGaiaGBand() []PassbandSample {
	return flatBand(320, 1100)
}

// defaultGaiaBPBand / defaultGaiaRPBand are placeholders for the
// BP/RP bandpass-ratio table.
func defaultGaiaBPBand() []PassbandSample { return flatBand(330, 680) }
func defaultGaiaRPBand() []PassbandSample { return flatBand(630, 1050) }
