package loader_test

import (
	"archive/zip"
	"bytes"
	"context"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/knolhq/knol/pkg/knowledge"
	"github.com/knolhq/knol/pkg/loader"
)

func TestLoader(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Loader Suite")
}

var _ = Describe("DetectFormat", func() {
	It("maps extensions to formats", func() {
		format, err := loader.DetectFormat("notes.txt")
		Expect(err).NotTo(HaveOccurred())
		Expect(format).To(Equal(knowledge.FormatTXT))

		format, err = loader.DetectFormat("README.md")
		Expect(err).NotTo(HaveOccurred())
		Expect(format).To(Equal(knowledge.FormatTXT))

		format, err = loader.DetectFormat("Handbook.PDF")
		Expect(err).NotTo(HaveOccurred())
		Expect(format).To(Equal(knowledge.FormatPDF))

		format, err = loader.DetectFormat("policy.docx")
		Expect(err).NotTo(HaveOccurred())
		Expect(format).To(Equal(knowledge.FormatDOCX))
	})

	It("rejects unknown extensions", func() {
		_, err := loader.DetectFormat("image.png")
		Expect(err).To(MatchError(knowledge.ErrUnsupportedFormat))
	})
})

var _ = Describe("TXTLoader", func() {
	var l *loader.TXTLoader

	BeforeEach(func() {
		l = loader.NewTXTLoader()
	})

	It("passes valid UTF-8 through", func() {
		text, err := l.Extract(context.Background(), []byte("plain text"))
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("plain text"))
	})

	It("normalises line endings", func() {
		text, err := l.Extract(context.Background(), []byte("one\r\ntwo\rthree\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("one\ntwo\nthree\n"))
	})

	It("strips the byte order mark", func() {
		text, err := l.Extract(context.Background(), []byte("\xef\xbb\xbfcontent"))
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("content"))
	})

	It("decodes Shift-JIS input", func() {
		// "日本語" encoded as Shift-JIS is not valid UTF-8.
		sjis := []byte{0x93, 0xfa, 0x96, 0x7b, 0x8c, 0xea}
		text, err := l.Extract(context.Background(), sjis)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("日本語"))
	})
})

var _ = Describe("DOCXLoader", func() {
	var l *loader.DOCXLoader

	BeforeEach(func() {
		l = loader.NewDOCXLoader()
	})

	buildDOCX := func(documentXML string) []byte {
		var buf bytes.Buffer
		w := zip.NewWriter(&buf)
		f, err := w.Create("word/document.xml")
		Expect(err).NotTo(HaveOccurred())
		_, err = f.Write([]byte(documentXML))
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Close()).To(Succeed())
		return buf.Bytes()
	}

	It("joins paragraph runs with newlines", func() {
		data := buildDOCX(`<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <w:body>
    <w:p><w:r><w:t>Hello</w:t></w:r><w:r><w:t> there</w:t></w:r></w:p>
    <w:p><w:r><w:t>Second paragraph</w:t></w:r></w:p>
  </w:body>
</w:document>`)

		text, err := l.Extract(context.Background(), data)
		Expect(err).NotTo(HaveOccurred())
		Expect(text).To(Equal("Hello there\nSecond paragraph"))
	})

	It("rejects archives without a document body", func() {
		var buf bytes.Buffer
		w := zip.NewWriter(&buf)
		f, err := w.Create("other.xml")
		Expect(err).NotTo(HaveOccurred())
		_, err = f.Write([]byte("<x/>"))
		Expect(err).NotTo(HaveOccurred())
		Expect(w.Close()).To(Succeed())

		_, err = l.Extract(context.Background(), buf.Bytes())
		Expect(err).To(MatchError(knowledge.ErrUnreadableDocument))
	})

	It("rejects bytes that are not a ZIP archive", func() {
		_, err := l.Extract(context.Background(), []byte("definitely not a zip"))
		Expect(err).To(MatchError(knowledge.ErrUnreadableDocument))
	})
})

var _ = Describe("PDFLoader", func() {
	It("rejects bytes that are not a PDF", func() {
		l := loader.NewPDFLoader()
		_, err := l.Extract(context.Background(), []byte("not a pdf"))
		Expect(err).To(MatchError(knowledge.ErrUnreadableDocument))
	})
})

var _ = Describe("Registry", func() {
	It("extracts via the loader matching the filename", func() {
		r := loader.NewDefaultRegistry()
		text, format, err := r.Extract(context.Background(), []byte("registry content"), "note.txt")
		Expect(err).NotTo(HaveOccurred())
		Expect(format).To(Equal(knowledge.FormatTXT))
		Expect(text).To(Equal("registry content"))
	})

	It("fails on unsupported filenames", func() {
		r := loader.NewDefaultRegistry()
		_, _, err := r.Extract(context.Background(), nil, "archive.tar.gz")
		Expect(err).To(MatchError(knowledge.ErrUnsupportedFormat))
	})
})
