package document

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"
)

var xmlescape = strings.NewReplacer("<", "&lt;", ">", "&gt;", "&", "&amp;")

func xmlText(s string) string {
	return xmlescape.Replace(norm.NFC.String(s))
}

func (d *PDFDocument) getMetadata() string {
	isoformatted := d.CreationDate.Format("2006-01-02T15:04:05-07:00")
	docID := uuid.New()
	instanceID := uuid.New()

	str := `<?xpacket begin="%[1]s" id="W5M0MpCehiHzreSzNTczkc9d"?>
<x:xmpmeta xmlns:x="adobe:ns:meta/">
  <rdf:RDF xmlns:rdf="http://www.w3.org/1999/02/22-rdf-syntax-ns#">
    <rdf:Description rdf:about="" xmlns:xmpMM="http://ns.adobe.com/xap/1.0/mm/">
      <xmpMM:DocumentID>uuid:%[2]s</xmpMM:DocumentID>
      <xmpMM:InstanceID>uuid:%[3]s</xmpMM:InstanceID>
    </rdf:Description>
    <rdf:Description rdf:about="" xmlns:xmp="http://ns.adobe.com/xap/1.0/">
      <xmp:CreateDate>%[4]s</xmp:CreateDate>
      <xmp:ModifyDate>%[4]s</xmp:ModifyDate>
      <xmp:MetadataDate>%[4]s</xmp:MetadataDate>
      <xmp:CreatorTool>%[5]s</xmp:CreatorTool>
    </rdf:Description>
    <rdf:Description rdf:about="" xmlns:pdf="http://ns.adobe.com/pdf/1.3/">
      <pdf:Producer>%[6]s</pdf:Producer>%[9]s
    </rdf:Description>
    <rdf:Description rdf:about="" xmlns:dc="http://purl.org/dc/elements/1.1/">
      <dc:title><rdf:Alt><rdf:li xml:lang="x-default">%[7]s</rdf:li></rdf:Alt></dc:title>
      <dc:creator><rdf:Seq><rdf:li>%[8]s</rdf:li></rdf:Seq></dc:creator>
    </rdf:Description>
  </rdf:RDF>
</x:xmpmeta>
<?xpacket end="r"?>`

	var keywords string
	if d.Keywords != "" {
		keywords = fmt.Sprintf(`
      <pdf:Keywords>%s</pdf:Keywords>`, xmlText(d.Keywords))
	}
	return fmt.Sprintf(str,
		"\xEF\xBB\xBF",
		docID,
		instanceID,
		isoformatted,
		xmlText(d.Creator),
		xmlText(d.producer),
		xmlText(d.Title),
		xmlText(d.Author),
		keywords,
	)
}
