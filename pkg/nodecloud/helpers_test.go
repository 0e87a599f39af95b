package nodecloud

import "math"

func sampleEntities() []Entity {
	return []Entity{
		{ID: "espresso", Title: "IoT Espresso Machine", Tags: []string{"Python", "IoT", "Hardware"}},
		{ID: "climbing", Title: "Adjustable Climbing Wall", Tags: []string{"Fabrication", "SolidWorks", "Addative Manufacturing"}},
		{ID: "printer", Title: "Networked 3D Printer Controller", Tags: []string{"Python", "HTML", "IoT"}},
		{ID: "mqttlights", Title: "MQTT Synchronous Lights", Tags: []string{"Hardware", "IoT", "C"}},
		{ID: "camera", Title: "Cameras", Tags: []string{"SolidWorks", "Reclamation", "Optics"}},
		{ID: "eclipse", Title: "Radio Telescope Thesis", Tags: []string{"Optics", "Data Collection", "MatLab", "SolidWorks"}},
		{ID: "headband", Title: "3D Printed Covid Faceshields", Tags: []string{"SolidWorks", "Fabrication", "Additive Manufacturing"}},
	}
}

func norm(p Point3D) float64 {
	return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

var square = Viewport{Width: 800, Height: 600}
