// Package deck 은 pptx 템플릿의 슬라이드를 읽고, 태그가 지정한 부분만 고쳐서
// 다시 저장하는 최소한의 문서 표면을 제공한다. 슬라이드 XML 은 etree 트리로
// 다루므로 건드리지 않은 서식과 속성은 그대로 보존된다.
package deck

import (
	"archive/zip"
	"bytes"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"
)

// OOXML 네임스페이스
const (
	nsDrawing       = "http://schemas.openxmlformats.org/drawingml/2006/main"
	nsPresentation  = "http://schemas.openxmlformats.org/presentationml/2006/main"
	nsRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

// Deck 은 열린 pptx 문서. 슬라이드 외의 zip 엔트리는 저장 시 그대로 복사된다.
type Deck struct {
	sourcePath string
	entries    []zipEntry
	slides     []*Slide
}

type zipEntry struct {
	name string
	data []byte
}

// Open 은 pptx 파일을 읽어 슬라이드를 문서 순서대로 파싱한다.
func Open(pptxPath string) (*Deck, error) {
	reader, err := zip.OpenReader(pptxPath)
	if err != nil {
		return nil, fmt.Errorf("pptx 파일 '%s' 을 열 수 없습니다: %w", pptxPath, err)
	}
	defer reader.Close()

	d := &Deck{sourcePath: pptxPath}
	raw := make(map[string][]byte)
	for _, f := range reader.File {
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("zip 엔트리 '%s' 읽기 실패: %w", f.Name, err)
		}
		var buf bytes.Buffer
		if _, err := buf.ReadFrom(rc); err != nil {
			rc.Close()
			return nil, fmt.Errorf("zip 엔트리 '%s' 읽기 실패: %w", f.Name, err)
		}
		rc.Close()
		raw[f.Name] = buf.Bytes()
		d.entries = append(d.entries, zipEntry{name: f.Name, data: buf.Bytes()})
	}

	slideEntries, err := slideEntryNames(raw)
	if err != nil {
		return nil, err
	}
	for _, entryName := range slideEntries {
		data, ok := raw[entryName]
		if !ok {
			return nil, fmt.Errorf("슬라이드 엔트리 '%s' 가 pptx 안에 없습니다", entryName)
		}
		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(data); err != nil {
			return nil, fmt.Errorf("슬라이드 XML '%s' 파싱 실패: %w", entryName, err)
		}
		slide, err := newSlideFromDoc(doc, entryName)
		if err != nil {
			return nil, fmt.Errorf("슬라이드 '%s' 해석 실패: %w", entryName, err)
		}
		d.slides = append(d.slides, slide)
	}
	log.Printf("정보：[Deck] 템플릿 로드 완료: %s (슬라이드 %d장)\n", pptxPath, len(d.slides))
	return d, nil
}

// slideEntryNames 는 presentation.xml 의 sldIdLst 순서에 따라
// 슬라이드 XML 엔트리 이름을 나열한다.
func slideEntryNames(raw map[string][]byte) ([]string, error) {
	presData, ok := raw["ppt/presentation.xml"]
	if !ok {
		return nil, fmt.Errorf("ppt/presentation.xml 이 없습니다. 올바른 pptx 파일인지 확인하세요")
	}
	relsData, ok := raw["ppt/_rels/presentation.xml.rels"]
	if !ok {
		return nil, fmt.Errorf("ppt/_rels/presentation.xml.rels 가 없습니다")
	}

	relsDoc := etree.NewDocument()
	if err := relsDoc.ReadFromBytes(relsData); err != nil {
		return nil, fmt.Errorf("presentation rels 파싱 실패: %w", err)
	}
	relTargets := make(map[string]string)
	for _, rel := range relsDoc.FindElements("//Relationship") {
		relTargets[rel.SelectAttrValue("Id", "")] = rel.SelectAttrValue("Target", "")
	}

	presDoc := etree.NewDocument()
	if err := presDoc.ReadFromBytes(presData); err != nil {
		return nil, fmt.Errorf("presentation.xml 파싱 실패: %w", err)
	}
	var names []string
	for _, sldID := range presDoc.FindElements("//p:sldIdLst/p:sldId") {
		rid := sldID.SelectAttrValue("r:id", "")
		target := relTargets[rid]
		if target == "" {
			return nil, fmt.Errorf("슬라이드 관계 ID '%s' 의 대상이 없습니다", rid)
		}
		if strings.HasPrefix(target, "/") {
			names = append(names, strings.TrimPrefix(target, "/"))
		} else {
			names = append(names, path.Join("ppt", target))
		}
	}
	return names, nil
}

// Slides 는 문서 순서대로의 슬라이드 목록
func (d *Deck) Slides() []*Slide {
	return d.slides
}

// SaveAs 는 수정된 슬라이드를 직렬화하고, 나머지 엔트리는 원본 그대로 복사해
// 새 pptx 파일을 쓴다.
func (d *Deck) SaveAs(outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("출력 디렉토리 생성 실패: %w", err)
	}

	modified := make(map[string][]byte, len(d.slides))
	for _, slide := range d.slides {
		data, err := slide.doc.WriteToBytes()
		if err != nil {
			return fmt.Errorf("슬라이드 '%s' 직렬화 실패: %w", slide.entryName, err)
		}
		modified[slide.entryName] = data
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("출력 파일 '%s' 생성 실패: %w", outputPath, err)
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	for _, entry := range d.entries {
		w, err := zw.Create(entry.name)
		if err != nil {
			zw.Close()
			return fmt.Errorf("zip 엔트리 '%s' 생성 실패: %w", entry.name, err)
		}
		data := entry.data
		if m, ok := modified[entry.name]; ok {
			data = m
		}
		if _, err := w.Write(data); err != nil {
			zw.Close()
			return fmt.Errorf("zip 엔트리 '%s' 쓰기 실패: %w", entry.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("pptx 마무리 쓰기 실패: %w", err)
	}
	log.Printf("정보：[Deck] 문서 저장 완료: %s\n", outputPath)
	return nil
}
