package catalog

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

type sampleTest struct {
	name        string
	description string
	price       float64
}

type sampleLab struct {
	name         string
	address      string
	city         string
	state        string
	zipCode      string
	contactEmail string
	contactPhone string
}

var sampleTests = []sampleTest{
	{"Complete Blood Count (CBC)", "Measures red blood cells, white blood cells, and platelets", 45.00},
	{"Basic Metabolic Panel (BMP)", "Tests glucose, electrolytes, and kidney function", 55.00},
	{"Lipid Panel", "Measures cholesterol and triglycerides", 50.00},
	{"Thyroid Stimulating Hormone (TSH)", "Tests thyroid function", 60.00},
	{"Hemoglobin A1C", "Measures average blood sugar over 3 months", 65.00},
	{"Glucose Test", "Measures blood sugar levels", 40.00},
	{"Liver Function Test (LFT)", "Tests liver enzymes and function", 70.00},
	{"Kidney Function Test", "Tests creatinine and BUN levels", 55.00},
	{"Cardiac Troponin", "Tests for heart muscle damage", 85.00},
	{"Vitamin D Test", "Measures vitamin D levels", 75.00},
	{"Vitamin B12 Test", "Measures B12 levels", 70.00},
	{"COVID-19 PCR Test", "Detects COVID-19 virus", 100.00},
	{"Urinalysis", "Complete urine analysis", 35.00},
	{"Chest X-Ray", "X-ray imaging of the chest", 120.00},
	{"ECG/EKG", "Electrocardiogram test", 80.00},
	{"T3 and T4 Test", "Comprehensive thyroid function test", 90.00},
	{"ALT and AST Test", "Liver enzyme tests", 65.00},
	{"Creatinine Test", "Kidney function marker", 45.00},
	{"BUN Test", "Blood urea nitrogen test", 40.00},
	{"Bilirubin Test", "Liver function marker", 50.00},
}

var sampleLabs = []sampleLab{
	{"City Lab Kathmandu", "New Road, Kathmandu", "Kathmandu", "Bagmati", "44600", "info@citylabkathmandu.com", "01-4221234"},
	{"MedTest Lalitpur", "Patan Durbar Square, Lalitpur", "Lalitpur", "Bagmati", "44700", "contact@medtestlalitpur.com", "01-5525678"},
	{"Health Lab Bhaktapur", "Bhaktapur Durbar Square, Bhaktapur", "Bhaktapur", "Bagmati", "44800", "info@healthlabbhaktapur.com", "01-6612345"},
	{"QuickTest Kathmandu", "Thamel, Kathmandu", "Kathmandu", "Bagmati", "44600", "support@quicktestkathmandu.com", "01-4701234"},
	{"Premium Labs Lalitpur", "Jawalakhel, Lalitpur", "Lalitpur", "Bagmati", "44700", "info@premiumlabslalitpur.com", "01-5527890"},
}

// sampleOfferingsPerLab keeps the sample catalog dense enough that
// every test is bookable somewhere without every lab carrying
// everything.
const sampleOfferingsPerLab = 12

// SeedSample loads the demo catalog: twenty common diagnostic tests
// and five labs around the Kathmandu valley, each carrying a staggered
// window of the test list. Every other offering overrides the base
// price by 10% so lab comparisons have something to show.
func SeedSample(ctx context.Context, repo Repository) (testCount, labCount int, err error) {
	tests := make([]*Test, 0, len(sampleTests))
	for _, st := range sampleTests {
		price := decimal.NewFromFloat(st.price)
		t := &Test{
			Name:        st.name,
			Description: st.description,
			Price:       &price,
		}
		if err := repo.CreateTest(ctx, t); err != nil {
			return 0, 0, fmt.Errorf("catalog: seed test %q: %w", st.name, err)
		}
		tests = append(tests, t)
	}

	for i, sl := range sampleLabs {
		lab := &Lab{
			Name:         sl.name,
			Address:      sl.address,
			City:         sl.city,
			State:        sl.state,
			ZipCode:      sl.zipCode,
			ContactEmail: sl.contactEmail,
			ContactPhone: sl.contactPhone,
		}
		if err := repo.CreateLab(ctx, lab); err != nil {
			return 0, 0, fmt.Errorf("catalog: seed lab %q: %w", sl.name, err)
		}

		for j := 0; j < sampleOfferingsPerLab; j++ {
			t := tests[(i*3+j)%len(tests)]
			offering := &Offering{
				LabID:       lab.ID,
				TestID:      t.ID,
				Description: fmt.Sprintf("%s - Available at %s", t.Description, lab.Name),
			}
			if j%2 == 1 && t.Price != nil {
				override := t.Price.Mul(decimal.NewFromFloat(1.1)).Round(2)
				offering.Price = &override
			}
			if err := repo.CreateOffering(ctx, offering); err != nil {
				return 0, 0, fmt.Errorf("catalog: seed offering %s at %s: %w", t.Name, lab.Name, err)
			}
		}
	}

	return len(tests), len(sampleLabs), nil
}
