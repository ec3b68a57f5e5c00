package deck

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalSlideXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main" xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <p:cSld>
    <p:spTree>
      <p:nvGrpSpPr><p:cNvPr id="1" name=""/><p:cNvGrpSpPr/><p:nvPr/></p:nvGrpSpPr>
      <p:grpSpPr/>
      <p:sp>
        <p:nvSpPr><p:cNvPr id="2" name="{{TITLE_AREA}}"/><p:cNvSpPr/><p:nvPr/></p:nvSpPr>
        <p:spPr>
          <a:xfrm><a:off x="914400" y="914400"/><a:ext cx="1828800" cy="914400"/></a:xfrm>
          <a:prstGeom prst="rect"><a:avLst/></a:prstGeom>
        </p:spPr>
        <p:txBody>
          <a:bodyPr/>
          <a:p><a:r><a:rPr sz="2400" b="1"/><a:t>기존 제목</a:t></a:r></a:p>
        </p:txBody>
      </p:sp>
    </p:spTree>
  </p:cSld>
</p:sld>`

const presentationXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <p:sldIdLst><p:sldId id="256" r:id="rId2"/></p:sldIdLst>
</p:presentation>`

const presentationRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId2" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/slide" Target="slides/slide1.xml"/>
</Relationships>`

func writeTestPptx(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "template.pptx")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	zw := zip.NewWriter(f)
	entries := map[string]string{
		"[Content_Types].xml":             `<?xml version="1.0"?><Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`,
		"ppt/presentation.xml":            presentationXML,
		"ppt/_rels/presentation.xml.rels": presentationRelsXML,
		"ppt/slides/slide1.xml":           minimalSlideXML,
	}
	for name, data := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(data))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return path
}

func TestOpenAndSaveRoundTrip(t *testing.T) {
	path := writeTestPptx(t)

	d, err := Open(path)
	require.NoError(t, err)
	require.Len(t, d.Slides(), 1)

	slide := d.Slides()[0]
	shapes := slide.Shapes()
	require.Len(t, shapes, 1)
	assert.Equal(t, "{{TITLE_AREA}}", shapes[0].Name())

	tf := shapes[0].TextFrame()
	require.NotNil(t, tf)
	assert.Equal(t, "기존 제목", tf.Text())

	// 텍스트를 바꾸고 다시 저장
	tf.Paragraphs()[0].Runs()[0].SetText("새 제목")
	out := filepath.Join(t.TempDir(), "out.pptx")
	require.NoError(t, d.SaveAs(out))

	reopened, err := Open(out)
	require.NoError(t, err)
	require.Len(t, reopened.Slides(), 1)
	reTF := reopened.Slides()[0].Shapes()[0].TextFrame()
	assert.Equal(t, "새 제목", reTF.Text())
	// 건드리지 않은 런 서식은 그대로 남아야 한다.
	assert.Equal(t, 24.0, reTF.Paragraphs()[0].Runs()[0].FontSize())
}

func TestShapeFrame(t *testing.T) {
	path := writeTestPptx(t)
	d, err := Open(path)
	require.NoError(t, err)

	left, top, width, height, ok := d.Slides()[0].Shapes()[0].Frame()
	require.True(t, ok)
	assert.Equal(t, Inches(1), left)
	assert.Equal(t, Inches(1), top)
	assert.Equal(t, Inches(2), width)
	assert.Equal(t, Inches(1), height)
}

func TestAddOvalAndStyling(t *testing.T) {
	slide := NewSlide()
	oval := slide.AddOval(Inches(1), Inches(1), Inches(0.7), Inches(0.7))
	oval.SetFill(138, 43, 226)
	oval.SetLine(255, 255, 255, 0.75)

	tf := oval.TextFrame()
	require.NotNil(t, tf)
	tf.SetWordWrap(true)
	tf.SetText("버블\n1,234")
	require.Len(t, tf.Paragraphs(), 2)
	for _, p := range tf.Paragraphs() {
		p.SetAlignment("ctr")
		for _, r := range p.Runs() {
			r.SetFontSize(12)
			r.SetColor(255, 255, 255)
		}
	}
	assert.Equal(t, "버블\n1,234", tf.Text())
	assert.Equal(t, 12.0, tf.Paragraphs()[0].Runs()[0].FontSize())
}

func TestSetTextClearsExtraParagraphs(t *testing.T) {
	slide := NewSlide()
	box := slide.AddTextBox("상자", "첫 줄\n둘째 줄\n셋째 줄", Inches(1), Inches(1), Inches(3), Inches(1))
	tf := box.TextFrame()
	require.Len(t, tf.Paragraphs(), 3)

	tf.SetText("한 줄")
	require.Len(t, tf.Paragraphs(), 1)
	assert.Equal(t, "한 줄", tf.Text())
}

func TestRemoveShape(t *testing.T) {
	slide := NewSlide()
	box := slide.AddTextBox("지울 상자", "x", Inches(1), Inches(1), Inches(1), Inches(1))
	require.Len(t, slide.Shapes(), 1)
	slide.RemoveShape(box)
	assert.Empty(t, slide.Shapes())
}

func TestEMUConversions(t *testing.T) {
	assert.Equal(t, EMU(914400), Inches(1))
	assert.Equal(t, 1.5, Inches(1.5).Inches())
}
