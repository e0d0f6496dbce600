package assemble

import (
	"bytes"
	"fmt"

	exif "github.com/dsoprea/go-exif/v3"
	exifcommon "github.com/dsoprea/go-exif/v3/common"
	jpegstructure "github.com/dsoprea/go-jpeg-image-structure/v2"
)

// tagJPEG embeds descriptive EXIF metadata into a JPEG without re-encoding
// the image data. The tags mirror what the PDF strategy records in the
// document info dictionary.
func tagJPEG(data []byte, job Job) ([]byte, error) {
	jmp := jpegstructure.NewJpegMediaParser()
	intfc, err := jmp.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parsing jpeg: %w", err)
	}
	sl := intfc.(*jpegstructure.SegmentList)

	rootIb, err := sl.ConstructExifBuilder()
	if err != nil {
		// Source has no EXIF block; start a fresh one.
		im, err := exifcommon.NewIfdMappingWithStandard()
		if err != nil {
			return nil, fmt.Errorf("building ifd mapping: %w", err)
		}
		ti := exif.NewTagIndex()
		rootIb = exif.NewIfdBuilder(
			im, ti, exifcommon.IfdStandardIfdIdentity, exifcommon.EncodeDefaultByteOrder,
		)
	}

	ifd0, err := exif.GetOrCreateIbFromRootIb(rootIb, "IFD0")
	if err != nil {
		return nil, fmt.Errorf("resolving IFD0: %w", err)
	}

	tags := []struct {
		name  string
		value string
	}{
		{"ImageDescription", job.Title},
		{"Artist", job.Author},
		{"Software", job.Software},
		{"Copyright", job.Copyright},
	}
	for _, t := range tags {
		if err := ifd0.SetStandardWithName(t.name, t.value); err != nil {
			return nil, fmt.Errorf("setting %s: %w", t.name, err)
		}
	}

	if err := sl.SetExif(rootIb); err != nil {
		return nil, fmt.Errorf("attaching exif: %w", err)
	}

	var buf bytes.Buffer
	if err := sl.Write(&buf); err != nil {
		return nil, fmt.Errorf("writing jpeg: %w", err)
	}
	return buf.Bytes(), nil
}
