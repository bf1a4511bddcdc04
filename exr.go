// exr.go - bit-exact handwritten OpenEXR writer.
//
// Magic 0x01312f76 little-endian, version byte 2, B/G/R channel list,
// compression NONE, dataWindow/displayWindow box2i, INCREASING_Y line
// order, per-row chunks. PNG/JPEG are left to the standard library;
// EXR's float/half scanline format has no standard-library encoder, so
// it is written directly here.

package main

import (
	"bytes"
	"encoding/binary"
	"io"
)

const (
	exrMagic       = 0x01312f76
	exrVersion     = 2
	exrAttrNameB   = "B"
	exrAttrNameG   = "G"
	exrAttrNameR   = "R"
)

// exrPixelType mirrors the OpenEXR channel pixel-type enum.
type exrPixelType int32

const (
	exrPixelUint  exrPixelType = 0
	exrPixelHalf  exrPixelType = 1
	exrPixelFloat exrPixelType = 2
)

// Chromaticities is the eight (x,y) CIE points (R,G,B,white) that
// define a color space, for the optional chromaticities attribute.
type Chromaticities struct {
	RX, RY, GX, GY, BX, BY, WX, WY float32
}

// WriteEXR emits a minimal uncompressed scan-line EXR for img, encoded
// at pixelType precision, to w. chroma is optional (nil to omit the
// attribute).
func WriteEXR(w io.Writer, img *Image, pixelType exrPixelType, chroma *Chromaticities) error {
	var buf bytes.Buffer

	binary.Write(&buf, binary.LittleEndian, int32(exrMagic))
	buf.WriteByte(exrVersion)
	buf.WriteByte(0) // flags byte 1
	buf.WriteByte(0) // flags byte 2
	buf.WriteByte(0) // flags byte 3

	writeChannelsAttr(&buf, pixelType)
	writeCompressionAttr(&buf)
	writeBox2iAttr(&buf, "dataWindow", 0, 0, int32(img.Width-1), int32(img.Height-1))
	writeBox2iAttr(&buf, "displayWindow", 0, 0, int32(img.Width-1), int32(img.Height-1))
	writeLineOrderAttr(&buf)
	writeFloatAttr(&buf, "pixelAspectRatio", 1.0)
	writeV2fAttr(&buf, "screenWindowCenter", 0, 0)
	writeFloatAttr(&buf, "screenWindowWidth", 1.0)
	if chroma != nil {
		writeChromaticitiesAttr(&buf, *chroma)
	}
	buf.WriteByte(0) // attribute-list terminator

	headerLen := buf.Len()
	offsetTableLen := 8 * img.Height
	bytesPerSample := pixelSampleSize(pixelType)
	rowPixelBytes := img.Width * bytesPerSample
	rowDataBytes := 3 * rowPixelBytes // B,G,R planar

	offsets := make([]uint64, img.Height)
	cursor := uint64(headerLen + offsetTableLen)
	for y := 0; y < img.Height; y++ {
		offsets[y] = cursor
		cursor += 8 + uint64(rowDataBytes) // y(4) + size(4) + payload
	}
	for _, off := range offsets {
		binary.Write(&buf, binary.LittleEndian, off)
	}

	for y := 0; y < img.Height; y++ {
		binary.Write(&buf, binary.LittleEndian, int32(y))
		binary.Write(&buf, binary.LittleEndian, int32(rowDataBytes))
		writeRowPlanar(&buf, img, y, pixelType)
	}

	_, err := w.Write(buf.Bytes())
	if err != nil {
		return newError(ErrOutput, "write exr: %w", err)
	}
	return nil
}

func pixelSampleSize(t exrPixelType) int {
	switch t {
	case exrPixelHalf:
		return 2
	default:
		return 4
	}
}

// writeRowPlanar emits one scan line's B, then G, then R planes, in
// little-endian.
func writeRowPlanar(buf *bytes.Buffer, img *Image, y int, pixelType exrPixelType) {
	for _, channel := range []int{2, 1, 0} { // B, G, R
		for x := 0; x < img.Width; x++ {
			o := img.offset(x, y)
			v := img.Pix[o+channel]
			switch pixelType {
			case exrPixelHalf:
				binary.Write(buf, binary.LittleEndian, float64ToHalf(v))
			case exrPixelFloat:
				binary.Write(buf, binary.LittleEndian, float32(v))
			case exrPixelUint:
				binary.Write(buf, binary.LittleEndian, uint32(v))
			}
		}
	}
}

func writeAttrHeader(buf *bytes.Buffer, name, typeName string, size int32) {
	buf.WriteString(name)
	buf.WriteByte(0)
	buf.WriteString(typeName)
	buf.WriteByte(0)
	binary.Write(buf, binary.LittleEndian, size)
}

// writeChannelsAttr emits the "channels" attribute: a chlist of B, G, R
// in that order, each with pixel type, linear flag, and 1x1 sampling,
// followed by the chlist's own null terminator.
func writeChannelsAttr(buf *bytes.Buffer, pixelType exrPixelType) {
	var body bytes.Buffer
	for _, name := range []string{exrAttrNameB, exrAttrNameG, exrAttrNameR} {
		body.WriteString(name)
		body.WriteByte(0)
		binary.Write(&body, binary.LittleEndian, int32(pixelType))
		body.WriteByte(0) // pLinear
		body.Write([]byte{0, 0, 0}) // reserved
		binary.Write(&body, binary.LittleEndian, int32(1)) // xSampling
		binary.Write(&body, binary.LittleEndian, int32(1)) // ySampling
	}
	body.WriteByte(0) // chlist terminator

	writeAttrHeader(buf, "channels", "chlist", int32(body.Len()))
	buf.Write(body.Bytes())
}

func writeCompressionAttr(buf *bytes.Buffer) {
	writeAttrHeader(buf, "compression", "compression", 1)
	buf.WriteByte(0) // NONE
}

func writeBox2iAttr(buf *bytes.Buffer, name string, xMin, yMin, xMax, yMax int32) {
	writeAttrHeader(buf, name, "box2i", 16)
	binary.Write(buf, binary.LittleEndian, xMin)
	binary.Write(buf, binary.LittleEndian, yMin)
	binary.Write(buf, binary.LittleEndian, xMax)
	binary.Write(buf, binary.LittleEndian, yMax)
}

func writeLineOrderAttr(buf *bytes.Buffer) {
	writeAttrHeader(buf, "lineOrder", "lineOrder", 1)
	buf.WriteByte(0) // INCREASING_Y
}

func writeFloatAttr(buf *bytes.Buffer, name string, v float32) {
	writeAttrHeader(buf, name, "float", 4)
	binary.Write(buf, binary.LittleEndian, v)
}

func writeV2fAttr(buf *bytes.Buffer, name string, x, y float32) {
	writeAttrHeader(buf, name, "v2f", 8)
	binary.Write(buf, binary.LittleEndian, x)
	binary.Write(buf, binary.LittleEndian, y)
}

func writeChromaticitiesAttr(buf *bytes.Buffer, c Chromaticities) {
	writeAttrHeader(buf, "chromaticities", "chromaticities", 32)
	binary.Write(buf, binary.LittleEndian, c.RX)
	binary.Write(buf, binary.LittleEndian, c.RY)
	binary.Write(buf, binary.LittleEndian, c.GX)
	binary.Write(buf, binary.LittleEndian, c.GY)
	binary.Write(buf, binary.LittleEndian, c.BX)
	binary.Write(buf, binary.LittleEndian, c.BY)
	binary.Write(buf, binary.LittleEndian, c.WX)
	binary.Write(buf, binary.LittleEndian, c.WY)
}
