// internal/rules/colorspace.go
package rules

import "math"

/*
 * sRGB to CIE Lab conversion and Delta-E color difference.
 *
 * Conversion: 8-bit sRGB -> inverse companding -> linear RGB -> XYZ (D65,
 * scaled to 100) -> Lab. Lab components are rounded to integers, matching the
 * palette extractor the library manager uses; the similarity thresholds in
 * color.go were tuned against rounded values.
 *
 * Distances:
 *   - CIE76: Euclidean distance in Lab
 *   - CIEDE2000: Sharma et al. 2005 formulation, kL = kC = kH = 1
 */

// RGB is an 8-bit sRGB triple.
type RGB [3]int

// Lab is a CIE L*a*b* color.
type Lab struct {
	L, A, B float64
}

// D65 reference white, 2 degree observer.
const (
	whiteX = 95.047
	whiteY = 100.0
	whiteZ = 108.883
)

// toLab converts an sRGB triple to Lab.
func toLab(c RGB) Lab {
	r := linearize(c[0])
	g := linearize(c[1])
	b := linearize(c[2])

	x := (r*0.4124 + g*0.3576 + b*0.1805) * 100 / whiteX
	y := (r*0.2126 + g*0.7152 + b*0.0722) * 100 / whiteY
	z := (r*0.0193 + g*0.1192 + b*0.9505) * 100 / whiteZ

	fx, fy, fz := labF(x), labF(y), labF(z)

	return Lab{
		L: roundHalfUp(116*fy - 16),
		A: roundHalfUp(500 * (fx - fy)),
		B: roundHalfUp(200 * (fy - fz)),
	}
}

func linearize(v int) float64 {
	c := float64(v) / 255
	if c > 0.04045 {
		return math.Pow((c+0.055)/1.055, 2.4)
	}
	return c / 12.92
}

func labF(t float64) float64 {
	if t > 0.008856 {
		return math.Cbrt(t)
	}
	return 7.787*t + 16.0/116.0
}

// roundHalfUp rounds .5 toward positive infinity.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

// deltaE76 is the CIE76 color difference.
func deltaE76(a, b Lab) float64 {
	dl, da, db := a.L-b.L, a.A-b.A, a.B-b.B
	return math.Sqrt(dl*dl + da*da + db*db)
}

// deltaE2000 is the CIEDE2000 color difference.
func deltaE2000(x, y Lab) float64 {
	const (
		kL, kC, kH = 1.0, 1.0, 1.0
		pow25To7   = 6103515625.0 // 25^7
	)

	c1 := math.Hypot(x.A, x.B)
	c2 := math.Hypot(y.A, y.B)
	cBar := (c1 + c2) / 2
	cBar7 := math.Pow(cBar, 7)
	g := 0.5 * (1 - math.Sqrt(cBar7/(cBar7+pow25To7)))

	a1p := x.A * (1 + g)
	a2p := y.A * (1 + g)
	c1p := math.Hypot(a1p, x.B)
	c2p := math.Hypot(a2p, y.B)
	h1p := hueAngle(x.B, a1p)
	h2p := hueAngle(y.B, a2p)

	dLp := y.L - x.L
	dCp := c2p - c1p

	var dhp float64
	switch {
	case c1p*c2p == 0:
		dhp = 0
	case math.Abs(h2p-h1p) <= 180:
		dhp = h2p - h1p
	case h2p-h1p > 180:
		dhp = h2p - h1p - 360
	default:
		dhp = h2p - h1p + 360
	}
	dHp := 2 * math.Sqrt(c1p*c2p) * math.Sin(radians(dhp/2))

	lBarP := (x.L + y.L) / 2
	cBarP := (c1p + c2p) / 2

	var hBarP float64
	switch {
	case c1p*c2p == 0:
		hBarP = h1p + h2p
	case math.Abs(h1p-h2p) <= 180:
		hBarP = (h1p + h2p) / 2
	case h1p+h2p < 360:
		hBarP = (h1p + h2p + 360) / 2
	default:
		hBarP = (h1p + h2p - 360) / 2
	}

	t := 1 -
		0.17*math.Cos(radians(hBarP-30)) +
		0.24*math.Cos(radians(2*hBarP)) +
		0.32*math.Cos(radians(3*hBarP+6)) -
		0.20*math.Cos(radians(4*hBarP-63))

	dTheta := 30 * math.Exp(-math.Pow((hBarP-275)/25, 2))
	cBarP7 := math.Pow(cBarP, 7)
	rc := 2 * math.Sqrt(cBarP7/(cBarP7+pow25To7))
	lBarP50 := (lBarP - 50) * (lBarP - 50)
	sl := 1 + 0.015*lBarP50/math.Sqrt(20+lBarP50)
	sc := 1 + 0.045*cBarP
	sh := 1 + 0.015*cBarP*t
	rt := -math.Sin(radians(2*dTheta)) * rc

	fl := dLp / (kL * sl)
	fc := dCp / (kC * sc)
	fh := dHp / (kH * sh)

	return math.Sqrt(fl*fl + fc*fc + fh*fh + rt*fc*fh)
}

// hueAngle returns atan2(b, a) in degrees within [0, 360).
func hueAngle(b, a float64) float64 {
	if a == 0 && b == 0 {
		return 0
	}
	h := math.Atan2(b, a) * 180 / math.Pi
	if h < 0 {
		h += 360
	}
	return h
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
