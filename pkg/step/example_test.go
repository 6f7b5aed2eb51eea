package step_test

import (
	"os"

	"github.com/matzehuels/bimtower/pkg/model"
	"github.com/matzehuels/bimtower/pkg/step"
)

func ExampleExport() {
	s := model.New()
	s.Add(model.Element{ID: "st", Type: "IfcBuildingStorey", Properties: model.Properties{"name": "Ground floor"}})
	s.Add(model.Element{ID: "w1", Type: "IfcWall", Parent: "st", Dimensions: &model.Dimensions{Width: 4}})

	_ = step.Export(os.Stdout, s.Snapshot(),
		step.WithProjectID("9c1e"),
		step.WithHeader(step.Header{Timestamp: "2024-01-01T00:00:00Z", PreprocessorVersion: "1.0", OriginatingSystem: "example"}),
	)
	// Output:
	// ISO-10303-21;
	// HEADER;
	// FILE_DESCRIPTION(('IFC model generated by bimtower'), 'IFC4');
	// FILE_NAME('export.ifc', '2024-01-01T00:00:00Z', ('bimtower'), ('bimtower'), '1.0', 'example', 'None');
	// FILE_SCHEMA(('IFC4'));
	// ENDSEC;
	// DATA;
	// #1=IFCPROJECT('9c1e', $, 'BIMTOWER PROJECT', $, $, $, $, $, $);
	// #2=IFCBUILDINGSTOREY('st', $, 'Ground floor', $, $, $, $, $, 0, $);
	// #3=IFCWALL('w1', $, 'Wall', $, $, 0, 0, 0, 3, 4, 0.3, $);
	// ENDSEC;
	// END-ISO-10303-21;
}
