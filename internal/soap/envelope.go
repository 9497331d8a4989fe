package soap

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

const (
	envelopeNS = "http://schemas.xmlsoap.org/soap/envelope/"
	serviceNS  = "http://schemas.cisco.com/ast/soap"
)

// doControlServicesTemplate renders a soapDoControlServices request.
// Duplicate service names are sent once.
const doControlServicesTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="{{ .EnvelopeNS }}" xmlns:soap="{{ .ServiceNS }}">
  <soapenv:Header/>
  <soapenv:Body>
    <soap:soapDoControlServices>
      <soap:ControlServiceRequest>
        <soap:NodeName>{{ .NodeName | trim | xml }}</soap:NodeName>
        <soap:ControlType>{{ .ControlType | xml }}</soap:ControlType>
        <soap:ServiceList>
{{- range uniq .Services }}
          <soap:item>{{ . | xml }}</soap:item>
{{- end }}
        </soap:ServiceList>
      </soap:ControlServiceRequest>
    </soap:soapDoControlServices>
  </soapenv:Body>
</soapenv:Envelope>
`

// getServiceStatusTemplate renders a soapGetServiceStatus request.
const getServiceStatusTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<soapenv:Envelope xmlns:soapenv="{{ .EnvelopeNS }}" xmlns:soap="{{ .ServiceNS }}">
  <soapenv:Header/>
  <soapenv:Body>
    <soap:soapGetServiceStatus>
      <soap:ServiceStatus>
{{- range uniq .Services }}
        <soap:item>{{ . | xml }}</soap:item>
{{- end }}
      </soap:ServiceStatus>
    </soap:soapGetServiceStatus>
  </soapenv:Body>
</soapenv:Envelope>
`

var (
	doControlServicesTmpl = mustParse("soapDoControlServices", doControlServicesTemplate)
	getServiceStatusTmpl  = mustParse("soapGetServiceStatus", getServiceStatusTemplate)
)

// requestData is the template context shared by both operations.
type requestData struct {
	EnvelopeNS  string
	ServiceNS   string
	NodeName    string
	ControlType string
	Services    []string
}

func mustParse(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(sprig.TxtFuncMap()).Funcs(template.FuncMap{
		"xml": xmlEscape,
	}).Parse(text))
}

// xmlEscape escapes character data for use inside an element.
func xmlEscape(v interface{}) (string, error) {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(fmt.Sprint(v))); err != nil {
		return "", err
	}
	return b.String(), nil
}

func render(tmpl *template.Template, data requestData) ([]byte, error) {
	data.EnvelopeNS = envelopeNS
	data.ServiceNS = serviceNS
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering %s request: %w", tmpl.Name(), err)
	}
	return buf.Bytes(), nil
}

// ServiceInfo is one (service, status) observation from either operation.
type ServiceInfo struct {
	Name             string `xml:"ServiceName"`
	Status           string `xml:"ServiceStatus"`
	ReasonCode       string `xml:"ReasonCode"`
	ReasonCodeString string `xml:"ReasonCodeString"`
	StartTime        string `xml:"StartTime"`
	UpTime           string `xml:"UpTime"`
}

// envelope matches both operation responses. The response and return
// elements are named after the operation, so they are captured by ",any".
type envelope struct {
	Body struct {
		Fault    *faultElement `xml:"Fault"`
		Response struct {
			Return struct {
				ReturnCode      string `xml:"ReturnCode"`
				ReasonCode      string `xml:"ReasonCode"`
				ReasonString    string `xml:"ReasonString"`
				ServiceInfoList struct {
					Items []ServiceInfo `xml:"item"`
				} `xml:"ServiceInfoList"`
			} `xml:",any"`
		} `xml:",any"`
	} `xml:"Body"`
}

type faultElement struct {
	Code   string `xml:"faultcode"`
	String string `xml:"faultstring"`
	Detail struct {
		Inner string `xml:",innerxml"`
	} `xml:"detail"`
}
